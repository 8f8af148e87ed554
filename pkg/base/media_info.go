// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

const (
	TrackKindAudio = "audio"
	TrackKindVideo = "video"

	TrackIdAudio = 0
	TrackIdVideo = 1
)

// Track 解复用输出的轨道。
// 一个demuxer的生命周期内固定两个实例，Id不变，audio=0，video=1
type Track struct {
	Kind           string // TrackKindAudio or TrackKindVideo
	Id             int
	SequenceNumber int
}

const (
	AudioCodecAac = "aac"
	AudioCodecMp3 = "mp3"

	VideoCodecAvc = "avc"
)

// MediaInfo 对流中音视频的综合描述。
//
// 来源有五个，字段取值按到达顺序逐步完善：
// - FLV文件头的flags
// - audio tag头中的音频格式、采样率和声道数
// - script tag中的onMetaData
// - video tag中的AVC decoder configuration record（内含SPS、PPS）
// - 运行时的帧率采样
//
// 注意，Sps和Pps是独立申请的内存块，不依赖喂给demuxer的输入缓冲区
type MediaInfo struct {
	HasAudio bool
	HasVideo bool

	AudioCodec        string // "aac" or "mp3"，没有音频或格式不支持时为空
	AudioSampleRate   int    // 采样率，单位Hz
	AudioChannelCount int
	AudioDataRate     int // 码率，单位kbit/s，累计字节数除以首个tag到最新tag的时间跨度

	VideoCodec    string // "avc"，没有视频时为空
	VideoDataRate int
	Width         int // 裁剪后的像素宽
	Height        int
	Profile       uint8 // AVCProfileIndication
	Level         uint8 // AVCLevelIndication
	Sps           []byte
	Pps           []byte

	ChromaFormat string // "4:2:0" "4:2:2" "4:4:4"
	BitDepth     int    // 亮度位深，>= 8
	PixFmt       string // yuv420p yuv420p10le yuv422p yuv422p10le yuv444p yuv444p10le
	ColorRange   string // "full" or "limited"

	ColorPrimaries string // 表中没有的code取值"unknown"
	ColorTransfer  string
	ColorSpace     string

	ColorPrimariesRaw       uint8
	TransferCharacteristics uint8
	MatrixCoefficients      uint8

	FrameRate float64 // 当前最优帧率估计
	Fps       float64

	HasKeyFrame bool

	Metadata map[string]interface{} // onMetaData解码后的值，没有script tag时为nil
}

// IsAttributeFilled 三类配置信息（音频、视频、metadata）中是否至少有一类已经就绪
func (mi *MediaInfo) IsAttributeFilled() bool {
	return mi.AudioCodec != "" || mi.VideoCodec != "" || mi.Metadata != nil
}
