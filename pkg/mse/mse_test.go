// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mse_test

import (
	"testing"

	"github.com/q191201771/flvmse/pkg/base"
	"github.com/q191201771/flvmse/pkg/mse"
	"github.com/q191201771/naza/pkg/assert"
)

func TestBuildAvcCodecString(t *testing.T) {
	assert.Equal(t, "avc1.4228", mse.BuildAvcCodecString(66, 40))
	assert.Equal(t, "avc1.641f", mse.BuildAvcCodecString(100, 31))
	// 两位小写十六进制，不足补零
	assert.Equal(t, "avc1.0a0b", mse.BuildAvcCodecString(10, 11))
}

func TestBuildAudioCodecString(t *testing.T) {
	assert.Equal(t, "mp4a.40.2", mse.BuildAudioCodecString(base.AudioCodecAac))
	assert.Equal(t, "mp4a.6b", mse.BuildAudioCodecString(base.AudioCodecMp3))
	assert.Equal(t, "", mse.BuildAudioCodecString(""))
	assert.Equal(t, "", mse.BuildAudioCodecString("opus"))
}

func TestBuildMimeType(t *testing.T) {
	info := base.MediaInfo{
		VideoCodec: base.VideoCodecAvc,
		Profile:    100,
		Level:      31,
		AudioCodec: base.AudioCodecAac,
	}
	assert.Equal(t, `video/mp4; codecs="avc1.641f,mp4a.40.2"`, mse.BuildMimeTypeFromMediaInfo(info))

	info.AudioCodec = ""
	assert.Equal(t, `video/mp4; codecs="avc1.641f"`, mse.BuildMimeTypeFromMediaInfo(info))
}
