// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/q191201771/flvmse/pkg/base"
	"github.com/q191201771/naza/pkg/assert"
)

func TestBuffer(t *testing.T) {
	b := base.NewBuffer(8)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, len(b.Bytes()))

	n, err := b.Write([]byte{1, 2, 3})
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, true, bytes.Equal([]byte{1, 2, 3}, b.Bytes()))

	b.Skip(2)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, true, bytes.Equal([]byte{3}, b.Bytes()))

	// 消费完后内部位置重置
	b.Skip(1)
	assert.Equal(t, 0, b.Len())

	// 超过初始容量时扩容
	big := make([]byte, 100)
	for i := range big {
		big[i] = byte(i)
	}
	_, err = b.Write(big)
	assert.Equal(t, nil, err)
	assert.Equal(t, 100, b.Len())
	assert.Equal(t, true, bytes.Equal(big, b.Bytes()))
	assert.Equal(t, true, b.Cap() >= 100)

	p := make([]byte, 60)
	n, err = b.Read(p)
	assert.Equal(t, nil, err)
	assert.Equal(t, 60, n)
	assert.Equal(t, true, bytes.Equal(big[:60], p))
	assert.Equal(t, 40, b.Len())

	// 头部加尾部空闲空间也不足时扩容，只保留未读数据
	_, err = b.Write(big)
	assert.Equal(t, nil, err)
	assert.Equal(t, 140, b.Len())
	assert.Equal(t, true, bytes.Equal(big[60:], b.Bytes()[:40]))
	assert.Equal(t, true, bytes.Equal(big, b.Bytes()[40:]))

	b.Reset()
	assert.Equal(t, 0, b.Len())
	_, err = b.Read(p)
	assert.Equal(t, io.EOF, err)
}

// 积攒输入、消费、重复，模拟ParseChunks的调用方
func TestBufferSkipPattern(t *testing.T) {
	b := base.NewBuffer(4)
	var consumedAll []byte
	for i := 0; i < 100; i++ {
		_, _ = b.Write([]byte{byte(i), byte(i + 1)})
		buf := b.Bytes()
		consumedAll = append(consumedAll, buf[0])
		b.Skip(1)
	}
	assert.Equal(t, 100, b.Len())
	assert.Equal(t, 100, len(consumedAll))
}
