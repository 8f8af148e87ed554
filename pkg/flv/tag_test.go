// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package flv

import (
	"bytes"
	"testing"

	"github.com/q191201771/naza/pkg/assert"
)

func TestPackTagParseTagHeader(t *testing.T) {
	body := []byte{0xAF, 0x01, 0x21, 0x10}
	raw := PackTag(TagTypeAudio, 0x01234567, body)
	assert.Equal(t, TagHeaderSize+len(body)+PrevTagSizeFieldSize, len(raw))

	h := ParseTagHeader(raw)
	assert.Equal(t, TagTypeAudio, h.Type)
	assert.Equal(t, uint32(len(body)), h.DataSize)
	assert.Equal(t, uint32(0x01234567), h.Timestamp)
	assert.Equal(t, uint32(0), h.StreamId)

	tag := Tag{Header: h, Raw: raw}
	assert.Equal(t, true, bytes.Equal(body, tag.Payload()))
}

func TestTagPredicates(t *testing.T) {
	audioSeq := Tag{Raw: PackTag(TagTypeAudio, 0, []byte{0xAF, 0x00, 0x12, 0x10})}
	audioSeq.Header = ParseTagHeader(audioSeq.Raw)
	assert.Equal(t, true, audioSeq.IsAacSeqHeader())
	assert.Equal(t, false, audioSeq.IsMetadata())

	videoSeq := Tag{Raw: PackTag(TagTypeVideo, 0, []byte{0x17, 0x00, 0x00, 0x00, 0x00})}
	videoSeq.Header = ParseTagHeader(videoSeq.Raw)
	assert.Equal(t, true, videoSeq.IsAvc())
	assert.Equal(t, true, videoSeq.IsAvcKeySeqHeader())
	assert.Equal(t, false, videoSeq.IsAvcKeyNalu())

	videoNalu := Tag{Raw: PackTag(TagTypeVideo, 0, []byte{0x17, 0x01, 0x00, 0x00, 0x00})}
	videoNalu.Header = ParseTagHeader(videoNalu.Raw)
	assert.Equal(t, false, videoNalu.IsAvcKeySeqHeader())
	assert.Equal(t, true, videoNalu.IsAvcKeyNalu())

	metadata := Tag{Raw: PackTag(TagTypeMetadata, 0, []byte{0x02})}
	metadata.Header = ParseTagHeader(metadata.Raw)
	assert.Equal(t, true, metadata.IsMetadata())
}

func TestTimestampExtended(t *testing.T) {
	// 超过24位的时间戳通过扩展字节表示
	raw := PackTag(TagTypeAudio, 0x89ABCDEF, nil)
	h := ParseTagHeader(raw)
	assert.Equal(t, uint32(0x89ABCDEF), h.Timestamp)
}
