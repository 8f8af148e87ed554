// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mse

// Media Source Extensions侧需要的codec字符串
//
// <https://www.w3.org/TR/mse-byte-stream-format-registry/>

import (
	"fmt"

	"github.com/q191201771/flvmse/pkg/base"
)

const (
	CodecStringAac = "mp4a.40.2"
	CodecStringMp3 = "mp4a.6b"
)

// BuildAvcCodecString
//
// @param profile, level: 取自AVCDecoderConfigurationRecord
//
// e.g. profile=100, level=31 -> "avc1.641f"
func BuildAvcCodecString(profile uint8, level uint8) string {
	return fmt.Sprintf("avc1.%02x%02x", profile, level)
}

// BuildAudioCodecString 没有音频或格式不支持时返回空字符串
func BuildAudioCodecString(audioCodec string) string {
	switch audioCodec {
	case base.AudioCodecAac:
		return CodecStringAac
	case base.AudioCodecMp3:
		return CodecStringMp3
	}
	return ""
}

// BuildMimeType
//
// e.g. `video/mp4; codecs="avc1.64001f,mp4a.40.2"`
func BuildMimeType(codecs []string) string {
	s := "video/mp4; codecs=\""
	for i, c := range codecs {
		if i != 0 {
			s += ","
		}
		s += c
	}
	return s + "\""
}

// BuildMimeTypeFromMediaInfo 由综合媒体描述生成MSE初始化所需的MIME串
func BuildMimeTypeFromMediaInfo(info base.MediaInfo) string {
	var codecs []string
	if info.VideoCodec == base.VideoCodecAvc {
		codecs = append(codecs, BuildAvcCodecString(info.Profile, info.Level))
	}
	if c := BuildAudioCodecString(info.AudioCodec); c != "" {
		codecs = append(codecs, c)
	}
	return BuildMimeType(codecs)
}
