// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package amf0_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/q191201771/flvmse/pkg/amf0"
	"github.com/q191201771/flvmse/pkg/base"
	"github.com/q191201771/naza/pkg/assert"
)

func TestWriteNumberReadNumber(t *testing.T) {
	cases := []float64{
		0,
		1,
		0xff,
		1.2,
		-30,
	}
	for _, item := range cases {
		out := &bytes.Buffer{}
		err := amf0.WriteNumber(out, item)
		assert.Equal(t, nil, err)
		v, l, err := amf0.ReadNumber(out.Bytes())
		assert.Equal(t, nil, err)
		assert.Equal(t, item, v)
		assert.Equal(t, 9, l)
	}
}

func TestWriteStringReadString(t *testing.T) {
	cases := []string{
		"a",
		"ab",
		"111",
		"~!@#$%^&*()_+",
	}
	for _, item := range cases {
		out := &bytes.Buffer{}
		err := amf0.WriteString(out, item)
		assert.Equal(t, nil, err)
		v, l, err := amf0.ReadString(out.Bytes())
		assert.Equal(t, nil, err)
		assert.Equal(t, item, v)
		assert.Equal(t, len(item)+3, l)
	}

	longStr := strings.Repeat("1", 65536)
	out := &bytes.Buffer{}
	err := amf0.WriteString(out, longStr)
	assert.Equal(t, nil, err)
	v, l, err := amf0.ReadString(out.Bytes())
	assert.Equal(t, nil, err)
	assert.Equal(t, longStr, v)
	assert.Equal(t, len(longStr)+5, l)
}

func TestWriteBooleanReadBoolean(t *testing.T) {
	for _, item := range []bool{true, false} {
		out := &bytes.Buffer{}
		err := amf0.WriteBoolean(out, item)
		assert.Equal(t, nil, err)
		v, l, err := amf0.ReadBoolean(out.Bytes())
		assert.Equal(t, nil, err)
		assert.Equal(t, item, v)
		assert.Equal(t, 2, l)
	}
}

func TestWriteObjectReadObject(t *testing.T) {
	out := &bytes.Buffer{}
	err := amf0.WriteObject(out, []amf0.ObjectPair{
		{Key: "app", Value: "live"},
		{Key: "width", Value: 1280},
		{Key: "stereo", Value: true},
	})
	assert.Equal(t, nil, err)

	obj, l, err := amf0.ReadObject(out.Bytes())
	assert.Equal(t, nil, err)
	assert.Equal(t, out.Len(), l)
	assert.Equal(t, 3, len(obj))
	assert.Equal(t, "live", obj["app"])
	assert.Equal(t, float64(1280), obj["width"])
	assert.Equal(t, true, obj["stereo"])
}

func TestWriteEcmaArrayReadEcmaArray(t *testing.T) {
	out := &bytes.Buffer{}
	err := amf0.WriteEcmaArray(out, []amf0.ObjectPair{
		{Key: "duration", Value: 0},
		{Key: "framerate", Value: 25},
	})
	assert.Equal(t, nil, err)

	obj, l, err := amf0.ReadEcmaArray(out.Bytes())
	assert.Equal(t, nil, err)
	assert.Equal(t, out.Len(), l)
	assert.Equal(t, 2, len(obj))
	assert.Equal(t, float64(0), obj["duration"])
	assert.Equal(t, float64(25), obj["framerate"])
}

func TestReadValue(t *testing.T) {
	// onMetaData的典型布局：一个string加一个ecma array
	out := &bytes.Buffer{}
	err := amf0.WriteString(out, "onMetaData")
	assert.Equal(t, nil, err)
	err = amf0.WriteEcmaArray(out, []amf0.ObjectPair{
		{Key: "width", Value: 1920},
		{Key: "height", Value: 1080},
	})
	assert.Equal(t, nil, err)

	b := out.Bytes()
	v, l, err := amf0.ReadValue(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, "onMetaData", v)
	v, l2, err := amf0.ReadValue(b[l:])
	assert.Equal(t, nil, err)
	assert.Equal(t, len(b), l+l2)
	obj := v.(map[string]interface{})
	assert.Equal(t, float64(1920), obj["width"])
	assert.Equal(t, float64(1080), obj["height"])
}

func TestReadNull(t *testing.T) {
	out := &bytes.Buffer{}
	err := amf0.WriteNull(out)
	assert.Equal(t, nil, err)
	l, err := amf0.ReadNull(out.Bytes())
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, l)

	v, l, err := amf0.ReadValue(out.Bytes())
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, v)
	assert.Equal(t, 1, l)
}

func TestReadDate(t *testing.T) {
	// marker + 8字节double + 2字节time-zone
	out := &bytes.Buffer{}
	err := amf0.WriteNumber(out, 1609459200000)
	assert.Equal(t, nil, err)
	b := append([]byte{0x0b}, out.Bytes()[1:]...)
	b = append(b, 0x00, 0x00)

	v, l, err := amf0.ReadDate(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, 11, l)
	assert.Equal(t, float64(1609459200000), v)
}

func TestReadStrictArray(t *testing.T) {
	// marker + count=2 + 两个number
	out := &bytes.Buffer{}
	out.Write([]byte{0x0a, 0x00, 0x00, 0x00, 0x02})
	err := amf0.WriteNumber(out, 1)
	assert.Equal(t, nil, err)
	err = amf0.WriteNumber(out, 2)
	assert.Equal(t, nil, err)

	arr, l, err := amf0.ReadStrictArray(out.Bytes())
	assert.Equal(t, nil, err)
	assert.Equal(t, out.Len(), l)
	assert.Equal(t, 2, len(arr))
	assert.Equal(t, float64(1), arr[0])
	assert.Equal(t, float64(2), arr[1])
}

func TestReadInvalid(t *testing.T) {
	_, _, err := amf0.ReadNumber(nil)
	assert.Equal(t, base.ErrAmfTooShort, err)
	_, _, err = amf0.ReadNumber([]byte{0x02, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.IsNotNil(t, err)
	_, _, err = amf0.ReadString([]byte{0x00, 0x01})
	assert.IsNotNil(t, err)
	_, _, err = amf0.ReadValue([]byte{0x0d})
	assert.IsNotNil(t, err)
}
