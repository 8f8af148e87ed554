// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package flv

// <video_file_format_spec_v10.pdf>

const (
	TagTypeAudio    uint8 = 8
	TagTypeVideo    uint8 = 9
	TagTypeMetadata uint8 = 18
)

const (
	FlvHeaderSize        = 9
	TagHeaderSize        = 11
	PrevTagSizeFieldSize = 4
)

const (
	FrameTypeKey       uint8 = 1
	FrameTypeInter     uint8 = 2
	FrameTypeVideoInfo uint8 = 5
)

const CodecIdAvc uint8 = 7

const (
	AvcPacketTypeSeqHeader     uint8 = 0
	AvcPacketTypeNalu          uint8 = 1
	AvcPacketTypeEndOfSequence uint8 = 2
)

const (
	SoundFormatMp3 uint8 = 2
	SoundFormatAac uint8 = 10
)

const (
	AacPacketTypeSeqHeader uint8 = 0
	AacPacketTypeRaw       uint8 = 1
)

// FlvHeader 音视频都存在的flv文件头，包含PreviousTagSize0
var FlvHeader = []byte{0x46, 0x4c, 0x56, 0x01, 0x05, 0x00, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00, 0x00}

// flv audio tag头中的soundRate字段到采样率的映射
var soundRateMapping = [4]int{5500, 11025, 22050, 44100}

// SoundRate2SampleRate
//
// @param index: audio tag头中2位的soundRate字段
func SoundRate2SampleRate(index uint8) int {
	return soundRateMapping[index&0x3]
}
