// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package amf0

// 提供amf0格式的解码操作，以及测试和demo用的少量编码操作
//
// <video_file_format_spec_v10.pdf>
// <Action Message Format -- AMF 0>
//
// 解码方法的返回值约定：
// 第1个参数为读取出的所指定类型的数据
// 第2个参数为读取时从<b>消耗的字节大小
// 第3个参数error，如果不等于nil，表示读取失败

import (
	"bytes"
	"io"

	"github.com/q191201771/flvmse/pkg/base"
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazalog"
)

const (
	TypeMarkerNumber      = uint8(0x00)
	TypeMarkerBoolean     = uint8(0x01)
	TypeMarkerString      = uint8(0x02)
	TypeMarkerObject      = uint8(0x03)
	TypeMarkerMovieclip   = uint8(0x04)
	TypeMarkerNull        = uint8(0x05)
	TypeMarkerUndefined   = uint8(0x06)
	TypeMarkerReference   = uint8(0x07)
	TypeMarkerEcmaArray   = uint8(0x08)
	TypeMarkerObjectEnd   = uint8(0x09)
	TypeMarkerStrictArray = uint8(0x0a)
	TypeMarkerDate        = uint8(0x0b)
	TypeMarkerLongString  = uint8(0x0c)
)

var typeMarkerObjectEndBytes = []byte{0, 0, TypeMarkerObjectEnd}

func ReadStringWithoutType(b []byte) (string, int, error) {
	if len(b) < 2 {
		return "", 0, base.ErrAmfTooShort
	}
	l := int(bele.BeUint16(b))
	if l > len(b)-2 {
		return "", 0, base.ErrAmfTooShort
	}
	return string(b[2 : 2+l]), 2 + l, nil
}

func ReadLongStringWithoutType(b []byte) (string, int, error) {
	if len(b) < 4 {
		return "", 0, base.ErrAmfTooShort
	}
	l := int(bele.BeUint32(b))
	if l > len(b)-4 {
		return "", 0, base.ErrAmfTooShort
	}
	return string(b[4 : 4+l]), 4 + l, nil
}

func ReadString(b []byte) (val string, l int, err error) {
	if len(b) < 1 {
		return "", 0, base.ErrAmfTooShort
	}
	switch b[0] {
	case TypeMarkerString:
		val, l, err = ReadStringWithoutType(b[1:])
		l++
	case TypeMarkerLongString:
		val, l, err = ReadLongStringWithoutType(b[1:])
		l++
	default:
		err = base.NewErrAmfInvalidType(b[0])
	}
	return
}

func ReadNumber(b []byte) (float64, int, error) {
	if len(b) < 9 {
		return 0, 0, base.ErrAmfTooShort
	}
	if b[0] != TypeMarkerNumber {
		return 0, 0, base.NewErrAmfInvalidType(b[0])
	}
	return bele.BeFloat64(b[1:]), 9, nil
}

func ReadBoolean(b []byte) (bool, int, error) {
	if len(b) < 2 {
		return false, 0, base.ErrAmfTooShort
	}
	if b[0] != TypeMarkerBoolean {
		return false, 0, base.NewErrAmfInvalidType(b[0])
	}
	return b[1] != 0x0, 2, nil
}

func ReadNull(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, base.ErrAmfTooShort
	}
	if b[0] != TypeMarkerNull {
		return 0, base.NewErrAmfInvalidType(b[0])
	}
	return 1, nil
}

// ReadDate 返回自1970年起的毫秒数。
// 注意，后2字节的time-zone按标准应该恒为0，这里不做校验，直接丢弃
func ReadDate(b []byte) (float64, int, error) {
	if len(b) < 11 {
		return 0, 0, base.ErrAmfTooShort
	}
	if b[0] != TypeMarkerDate {
		return 0, 0, base.NewErrAmfInvalidType(b[0])
	}
	return bele.BeFloat64(b[1:]), 11, nil
}

func ReadObject(b []byte) (map[string]interface{}, int, error) {
	if len(b) < 1 {
		return nil, 0, base.ErrAmfTooShort
	}
	if b[0] != TypeMarkerObject {
		return nil, 0, base.NewErrAmfInvalidType(b[0])
	}
	obj, index, err := readObjectKvs(b, 1)
	if err != nil {
		return nil, 0, err
	}
	return obj, index, nil
}

// ReadEcmaArray 和object的区别在于多了4字节的数量字段。
// 注意，有些编码器写入的数量和实际并不一致，所以解析时不以数量为准，以object end标志为准
func ReadEcmaArray(b []byte) (map[string]interface{}, int, error) {
	if len(b) < 5 {
		return nil, 0, base.ErrAmfTooShort
	}
	if b[0] != TypeMarkerEcmaArray {
		return nil, 0, base.NewErrAmfInvalidType(b[0])
	}
	obj, index, err := readObjectKvs(b, 5)
	if err != nil {
		return nil, 0, err
	}
	return obj, index, nil
}

func ReadStrictArray(b []byte) ([]interface{}, int, error) {
	if len(b) < 5 {
		return nil, 0, base.ErrAmfTooShort
	}
	if b[0] != TypeMarkerStrictArray {
		return nil, 0, base.NewErrAmfInvalidType(b[0])
	}
	count := int(bele.BeUint32(b[1:]))
	index := 5
	arr := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		v, l, err := ReadValue(b[index:])
		if err != nil {
			return nil, 0, err
		}
		arr = append(arr, v)
		index += l
	}
	return arr, index, nil
}

// ReadValue 按首字节的type marker分发读取一个完整的amf0值
//
// @return 类型为以下之一：
//         float64, bool, string, map[string]interface{}, []interface{}, nil
func ReadValue(b []byte) (interface{}, int, error) {
	if len(b) < 1 {
		return nil, 0, base.ErrAmfTooShort
	}
	switch b[0] {
	case TypeMarkerNumber:
		return ReadNumber(b)
	case TypeMarkerBoolean:
		return ReadBoolean(b)
	case TypeMarkerString, TypeMarkerLongString:
		v, l, err := ReadString(b)
		return v, l, err
	case TypeMarkerObject:
		return ReadObject(b)
	case TypeMarkerEcmaArray:
		return ReadEcmaArray(b)
	case TypeMarkerStrictArray:
		return ReadStrictArray(b)
	case TypeMarkerDate:
		return ReadDate(b)
	case TypeMarkerNull:
		l, err := ReadNull(b)
		return nil, l, err
	case TypeMarkerUndefined:
		return nil, 1, nil
	}
	return nil, 0, base.NewErrAmfInvalidType(b[0])
}

func readObjectKvs(b []byte, index int) (map[string]interface{}, int, error) {
	obj := make(map[string]interface{})
	for {
		if len(b)-index >= 3 && bytes.Equal(b[index:index+3], typeMarkerObjectEndBytes) {
			return obj, index + 3, nil
		}

		k, l, err := ReadStringWithoutType(b[index:])
		if err != nil {
			return nil, 0, err
		}
		index += l
		v, l, err := ReadValue(b[index:])
		if err != nil {
			return nil, 0, err
		}
		index += l
		if _, exist := obj[k]; exist {
			nazalog.Warnf("duplicate key in amf0 object. k=%s", k)
		}
		obj[k] = v
	}
}

// ----- 编码 ----------------------------------------------------------------------------------------------------------

func WriteNumber(writer io.Writer, val float64) error {
	if _, err := writer.Write([]byte{TypeMarkerNumber}); err != nil {
		return err
	}
	return bele.WriteBe(writer, val)
}

func WriteString(writer io.Writer, val string) error {
	if len(val) < 65536 {
		if _, err := writer.Write([]byte{TypeMarkerString}); err != nil {
			return err
		}
		if err := bele.WriteBe(writer, uint16(len(val))); err != nil {
			return err
		}
	} else {
		if _, err := writer.Write([]byte{TypeMarkerLongString}); err != nil {
			return err
		}
		if err := bele.WriteBe(writer, uint32(len(val))); err != nil {
			return err
		}
	}
	_, err := writer.Write([]byte(val))
	return err
}

func WriteBoolean(writer io.Writer, val bool) error {
	b := []byte{TypeMarkerBoolean, 0}
	if val {
		b[1] = 1
	}
	_, err := writer.Write(b)
	return err
}

func WriteNull(writer io.Writer) error {
	_, err := writer.Write([]byte{TypeMarkerNull})
	return err
}

// ObjectPair 保留写入时的字段顺序
type ObjectPair struct {
	Key   string
	Value interface{}
}

func WriteObject(writer io.Writer, objs []ObjectPair) error {
	if _, err := writer.Write([]byte{TypeMarkerObject}); err != nil {
		return err
	}
	return writeObjectKvs(writer, objs)
}

func WriteEcmaArray(writer io.Writer, objs []ObjectPair) error {
	if _, err := writer.Write([]byte{TypeMarkerEcmaArray}); err != nil {
		return err
	}
	if err := bele.WriteBe(writer, uint32(len(objs))); err != nil {
		return err
	}
	return writeObjectKvs(writer, objs)
}

func writeObjectKvs(writer io.Writer, objs []ObjectPair) error {
	for i := range objs {
		if err := bele.WriteBe(writer, uint16(len(objs[i].Key))); err != nil {
			return err
		}
		if _, err := writer.Write([]byte(objs[i].Key)); err != nil {
			return err
		}
		switch v := objs[i].Value.(type) {
		case string:
			if err := WriteString(writer, v); err != nil {
				return err
			}
		case bool:
			if err := WriteBoolean(writer, v); err != nil {
				return err
			}
		case int:
			if err := WriteNumber(writer, float64(v)); err != nil {
				return err
			}
		case float64:
			if err := WriteNumber(writer, v); err != nil {
				return err
			}
		case nil:
			if err := WriteNull(writer); err != nil {
				return err
			}
		default:
			return base.ErrAmfInvalidType
		}
	}
	_, err := writer.Write(typeMarkerObjectEndBytes)
	return err
}
