// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package flv

import (
	"io"

	"github.com/q191201771/naza/pkg/bele"
)

type TagHeader struct {
	Type      uint8  // 8 audio, 9 video, 18 metadata
	DataSize  uint32 // body大小，不包含header和prev tag size字段
	Timestamp uint32 // 绝对时间戳，单位毫秒。高8位来自扩展字节
	StreamId  uint32 // always 0
}

type Tag struct {
	Header TagHeader
	Raw    []byte // 结构为(11字节的tag header) + (body) + (4字节的prev tag size)
}

func (tag *Tag) Payload() []byte {
	return tag.Raw[TagHeaderSize : len(tag.Raw)-PrevTagSizeFieldSize]
}

func (tag *Tag) IsMetadata() bool {
	return tag.Header.Type == TagTypeMetadata
}

func (tag *Tag) IsAvc() bool {
	return tag.Header.Type == TagTypeVideo && tag.Raw[TagHeaderSize]&0xF == CodecIdAvc
}

func (tag *Tag) IsAvcKeySeqHeader() bool {
	return tag.Header.Type == TagTypeVideo &&
		tag.Raw[TagHeaderSize]>>4 == FrameTypeKey &&
		tag.Raw[TagHeaderSize]&0xF == CodecIdAvc &&
		tag.Raw[TagHeaderSize+1] == AvcPacketTypeSeqHeader
}

func (tag *Tag) IsAvcKeyNalu() bool {
	return tag.Header.Type == TagTypeVideo &&
		tag.Raw[TagHeaderSize]>>4 == FrameTypeKey &&
		tag.Raw[TagHeaderSize]&0xF == CodecIdAvc &&
		tag.Raw[TagHeaderSize+1] == AvcPacketTypeNalu
}

func (tag *Tag) IsAacSeqHeader() bool {
	return tag.Header.Type == TagTypeAudio &&
		tag.Raw[TagHeaderSize]>>4 == SoundFormatAac &&
		tag.Raw[TagHeaderSize+1] == AacPacketTypeSeqHeader
}

// PackTag 打包一个序列化后的tag二进制buffer，包含tag header，body，prev tag size
func PackTag(t uint8, timestamp uint32, body []byte) []byte {
	out := make([]byte, TagHeaderSize+len(body)+PrevTagSizeFieldSize)
	out[0] = t
	bele.BePutUint24(out[1:], uint32(len(body)))
	bele.BePutUint24(out[4:], timestamp&0xFFFFFF)
	out[7] = uint8(timestamp >> 24)
	out[8] = 0
	out[9] = 0
	out[10] = 0
	copy(out[TagHeaderSize:], body)
	bele.BePutUint32(out[TagHeaderSize+len(body):], uint32(TagHeaderSize+len(body)))
	return out
}

// ParseTagHeader
//
// @param rawHeader: 长度必须>=TagHeaderSize
func ParseTagHeader(rawHeader []byte) TagHeader {
	var h TagHeader
	h.Type = rawHeader[0]
	h.DataSize = bele.BeUint24(rawHeader[1:])
	h.Timestamp = uint32(rawHeader[7])<<24 | bele.BeUint24(rawHeader[4:])
	h.StreamId = bele.BeUint24(rawHeader[8:])
	return h
}

func readTag(rd io.Reader) (tag Tag, err error) {
	rawHeader := make([]byte, TagHeaderSize)
	if _, err = io.ReadAtLeast(rd, rawHeader, TagHeaderSize); err != nil {
		return
	}
	header := ParseTagHeader(rawHeader)

	needed := int(header.DataSize) + PrevTagSizeFieldSize
	tag.Header = header
	tag.Raw = make([]byte, TagHeaderSize+needed)
	copy(tag.Raw, rawHeader)

	if _, err = io.ReadAtLeast(rd, tag.Raw[TagHeaderSize:], needed); err != nil {
		return
	}

	return
}
