// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package flv

import (
	"math"
	"time"

	"github.com/q191201771/flvmse/pkg/aac"
	"github.com/q191201771/flvmse/pkg/amf0"
	"github.com/q191201771/flvmse/pkg/avc"
	"github.com/q191201771/flvmse/pkg/base"
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazalog"
)

// Demuxer 增量式的flv解复用器。
//
// 工作方式：调用方持续将flv字节流（可在任意位置切割）喂给ParseChunks，
// Demuxer通过回调吐出音视频数据、metadata以及综合的媒体描述MediaInfo。
//
// 使用约定：
// - 一个Demuxer实例只服务一路流，不可复用。结束时调用Dispose
// - ParseChunks、Dispose以及回调都在调用方的同一个goroutine中执行，回调不应阻塞
// - OnData吐出的内存块引用喂入的buf，只在回调执行期间有效，需要留存时调用方自行拷贝。
//   MediaInfo中的Sps、Pps是独立的内存块，不受该限制

type DemuxerOption struct {
	// OnData 每个音频帧以及视频nalu数据各回调一次，按flv流中tag的顺序。
	// pts和dts单位都是毫秒
	OnData func(track *base.Track, b []byte, pts int64, dts int64)

	// OnMediaInfo 首个配置信息（音频、视频或metadata）到达后至少回调一次，
	// 之后信息被补全或帧率估计发生变化时可能再次回调，永远是相同或更完善的视图
	OnMediaInfo func(info base.MediaInfo)

	// OnScriptData 每个script tag回调一次
	OnScriptData func(metadata map[string]interface{})

	// OnTimestamp 每个视频nalu tag回调一次
	OnTimestamp func(pts int64, dts int64)
}

type ModDemuxerOption func(option *DemuxerOption)

type Demuxer struct {
	option DemuxerOption

	headerParsed bool

	audioTrack base.Track
	videoTrack base.Track

	mediaInfo base.MediaInfo

	// width/height已由sps确定，此后metadata中的尺寸不再覆盖
	dimensionsFromSps bool

	audioConfigured bool

	ascCtx *aac.AscContext

	audioByteCount int64
	videoByteCount int64
	beginTime      int64
	beginTimeSet   bool
	endTime        int64

	sampler frameRateSampler

	// 便于测试注入时钟
	nowFn func() time.Time
}

func NewDemuxer(modOptions ...ModDemuxerOption) *Demuxer {
	d := &Demuxer{
		audioTrack: base.Track{Kind: base.TrackKindAudio, Id: base.TrackIdAudio},
		videoTrack: base.Track{Kind: base.TrackKindVideo, Id: base.TrackIdVideo},
		sampler:    newFrameRateSampler(),
		nowFn:      time.Now,
	}
	for _, fn := range modOptions {
		fn(&d.option)
	}
	return d
}

// ParseChunks 喂入一段flv字节流。
//
// @param buf: 调用方持有的内存块，只在本次调用期间被引用
//
// @return consumed: 本次消费的字节数。
//                   小于len(buf)表示尾部是一个不完整的tag，调用方应将buf[consumed:]
//                   拼接在后续数据之前重新喂入
// @return err:      首次喂入的数据不是flv流时返回ErrFlvFormat。
//                   单个坏tag不会中断解析，只会被跳过
func (d *Demuxer) ParseChunks(buf []byte) (consumed int, err error) {
	offset := 0

	if !d.headerParsed {
		if len(buf) < FlvHeaderSize+PrevTagSizeFieldSize {
			return 0, nil
		}
		if buf[0] != 'F' || buf[1] != 'L' || buf[2] != 'V' {
			return 0, base.NewErrFlvFormat("signature mismatch")
		}
		version := buf[3]
		if version != 1 {
			nazalog.Warnf("flv version unexpected. version=%d", version)
		}
		flags := buf[4]
		d.mediaInfo.HasAudio = flags&0x04 != 0
		d.mediaInfo.HasVideo = flags&0x01 != 0

		dataOffset := int(bele.BeUint32(buf[5:]))
		if dataOffset < FlvHeaderSize {
			nazalog.Warnf("flv header data offset invalid. dataOffset=%d", dataOffset)
			dataOffset = FlvHeaderSize
		}
		if len(buf) < dataOffset+PrevTagSizeFieldSize {
			return 0, nil
		}
		// 跳过文件头和PreviousTagSize0
		offset = dataOffset + PrevTagSizeFieldSize
		d.headerParsed = true
	}

	for {
		if len(buf)-offset < TagHeaderSize+PrevTagSizeFieldSize {
			break
		}
		h := ParseTagHeader(buf[offset:])
		needed := TagHeaderSize + int(h.DataSize) + PrevTagSizeFieldSize
		if len(buf)-offset < needed {
			// tag不完整，回退到tag起始处等待更多数据
			break
		}

		payload := buf[offset+TagHeaderSize : offset+TagHeaderSize+int(h.DataSize)]
		prevTagSize := bele.BeUint32(buf[offset+TagHeaderSize+int(h.DataSize):])
		if prevTagSize != uint32(TagHeaderSize)+h.DataSize {
			nazalog.Warnf("prev tag size mismatch. prevTagSize=%d, expected=%d", prevTagSize, TagHeaderSize+int(h.DataSize))
		}

		if h.StreamId != 0 {
			nazalog.Warnf("tag stream id not zero, skip. streamId=%d", h.StreamId)
			offset += needed
			continue
		}

		ts := int64(int32(h.Timestamp))
		if !d.beginTimeSet {
			d.beginTime = ts
			d.beginTimeSet = true
		}
		d.endTime = ts

		switch h.Type {
		case TagTypeAudio:
			d.parseAudioData(payload, ts)
		case TagTypeVideo:
			d.parseVideoData(payload, ts)
		case TagTypeMetadata:
			d.parseScriptData(payload)
		default:
			nazalog.Warnf("unknown tag type, skip. type=%d, dataSize=%d", h.Type, h.DataSize)
		}

		offset += needed
	}

	d.calcDataRate()
	return offset, nil
}

// Dispose 释放内部持有的资源。之后该实例不可再使用
func (d *Demuxer) Dispose() {
	d.option = DemuxerOption{}
	d.mediaInfo = base.MediaInfo{}
	d.ascCtx = nil
	d.sampler = newFrameRateSampler()
}

// ---------------------------------------------------------------------------------------------------------------------

// <video_file_format_spec_v10.pdf>, <Audio tags, AUDIODATA>, <page 10/48>
// -----------------------------------------------------------------------
// soundFormat [4b] 10=AAC 2=MP3
// soundRate   [2b] 0=5.5kHz 1=11kHz 2=22kHz 3=44kHz
// soundSize   [1b]
// soundType   [1b] 0=mono 1=stereo
func (d *Demuxer) parseAudioData(payload []byte, ts int64) {
	if len(payload) < 2 {
		nazalog.Warnf("audio tag too short. len=%d", len(payload))
		return
	}
	d.audioByteCount += int64(len(payload))

	soundSpec := payload[0]
	soundFormat := soundSpec >> 4

	switch soundFormat {
	case SoundFormatAac:
		aacPacketType := payload[1]
		if aacPacketType == AacPacketTypeSeqHeader {
			ascCtx, err := aac.NewAscContext(payload[2:])
			if err != nil {
				nazalog.Warnf("parse asc failed. err=%+v", err)
			} else {
				d.ascCtx = ascCtx
			}
		}
		if !d.audioConfigured {
			d.fillAudioFields(soundSpec, base.AudioCodecAac)
			d.dispatchMediaInfo()
		}
		d.emitData(&d.audioTrack, payload[2:], ts, ts)
	case SoundFormatMp3:
		if !d.audioConfigured {
			d.fillAudioFields(soundSpec, base.AudioCodecMp3)
			d.dispatchMediaInfo()
		}
		d.emitData(&d.audioTrack, payload[1:], ts, ts)
	default:
		// 其他格式原样透传，不参与MediaInfo
		d.emitData(&d.audioTrack, payload[1:], ts, ts)
	}
}

func (d *Demuxer) fillAudioFields(soundSpec uint8, codec string) {
	d.mediaInfo.AudioCodec = codec
	d.mediaInfo.AudioSampleRate = SoundRate2SampleRate(soundSpec >> 2)
	d.mediaInfo.AudioChannelCount = int(soundSpec&0x1) + 1
	d.audioConfigured = true
}

// <video_file_format_spec_v10.pdf>, <Video tags, VIDEODATA>, <page 11/48>
// -----------------------------------------------------------------------
// frameType     [4b] 1=key frame 2=inter frame 5=video info/command frame
// codecId       [4b] 7=AVC
// avcPacketType [8b] 0=seq header 1=nalu 2=end of sequence
// cts           [24b] 有符号
func (d *Demuxer) parseVideoData(payload []byte, ts int64) {
	if len(payload) < 5 {
		nazalog.Warnf("video tag too short. len=%d", len(payload))
		return
	}
	d.videoByteCount += int64(len(payload))

	frameType := payload[0] >> 4
	codecId := payload[0] & 0xF
	if codecId != CodecIdAvc {
		nazalog.Warnf("unsupported video codec, skip. codecId=%d", codecId)
		return
	}
	if frameType == FrameTypeVideoInfo {
		return
	}

	avcPacketType := payload[1]
	cts := signExtend24(bele.BeUint24(payload[2:]))

	switch avcPacketType {
	case AvcPacketTypeSeqHeader:
		d.parseAvcSeqHeader(payload[5:])
	case AvcPacketTypeNalu:
		dts := ts
		pts := dts + int64(cts)

		if fps, changed := d.sampler.sample(pts, d.nowFn()); changed {
			d.mediaInfo.Fps = fps
			d.mediaInfo.FrameRate = fps
			d.dispatchMediaInfo()
		}
		if frameType == FrameTypeKey {
			d.mediaInfo.HasKeyFrame = true
		}
		if d.option.OnTimestamp != nil {
			d.option.OnTimestamp(pts, dts)
		}
		d.emitData(&d.videoTrack, payload[5:], pts, dts)
	case AvcPacketTypeEndOfSequence:
		// 忽略
	default:
		nazalog.Warnf("unknown avc packet type, skip. avcPacketType=%d", avcPacketType)
	}
}

func (d *Demuxer) parseAvcSeqHeader(b []byte) {
	dcr, err := avc.ParseDecoderConfigurationRecord(b)
	if err != nil {
		nazalog.Warnf("parse avc decoder configuration record failed. err=%+v", err)
		return
	}

	mi := &d.mediaInfo
	mi.VideoCodec = base.VideoCodecAvc
	mi.Profile = dcr.AvcProfileIndication
	mi.Level = dcr.AvcLevelIndication
	mi.Sps = dcr.Sps
	mi.Pps = dcr.Pps

	sps := &dcr.SpsCtx
	if sps.Width > 0 && sps.Height > 0 {
		mi.Width = sps.Width
		mi.Height = sps.Height
		d.dimensionsFromSps = true
	}
	mi.ChromaFormat = sps.ChromaFormatReadable()
	mi.BitDepth = sps.BitDepth()
	mi.PixFmt = sps.PixFmt()

	if vui := sps.Vui; vui != nil {
		mi.ColorPrimariesRaw = vui.ColourPrimaries
		mi.TransferCharacteristics = vui.TransferCharacteristics
		mi.MatrixCoefficients = vui.MatrixCoefficients
		mi.ColorPrimaries = avc.ColourPrimariesReadable(vui.ColourPrimaries)
		mi.ColorTransfer = avc.TransferCharacteristicsReadable(vui.TransferCharacteristics)
		mi.ColorSpace = avc.MatrixCoefficientsReadable(vui.MatrixCoefficients)
		mi.ColorRange = avc.ColorRangeReadable(vui.FullRange)
		if vui.Fps > 0 {
			mi.FrameRate = vui.Fps
			mi.Fps = vui.Fps
		}
	}

	d.dispatchMediaInfo()
}

func (d *Demuxer) parseScriptData(payload []byte) {
	// 两个amf0值，第一个是名字，通常为"onMetaData"
	name, l, err := amf0.ReadValue(payload)
	if err != nil {
		nazalog.Warnf("parse script tag name failed. err=%+v", err)
		return
	}
	if s, ok := name.(string); !ok || s != "onMetaData" {
		nazalog.Warnf("script tag name unexpected. name=%+v", name)
	}
	v, _, err := amf0.ReadValue(payload[l:])
	if err != nil {
		nazalog.Warnf("parse script tag value failed. err=%+v", err)
		return
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		nazalog.Warnf("script tag value not an object. value=%+v", v)
		return
	}

	d.mediaInfo.Metadata = obj

	if !d.dimensionsFromSps {
		w, okw := numberField(obj, "width")
		h, okh := numberField(obj, "height")
		if okw && okh {
			d.mediaInfo.Width = int(w)
			d.mediaInfo.Height = int(h)
		}
	}
	if fr, ok := numberField(obj, "framerate"); ok && fr > 0 {
		d.mediaInfo.FrameRate = fr
		d.mediaInfo.Fps = fr
	}

	if d.option.OnScriptData != nil {
		d.option.OnScriptData(obj)
	}
	d.dispatchMediaInfo()
}

// ---------------------------------------------------------------------------------------------------------------------

func (d *Demuxer) emitData(track *base.Track, b []byte, pts int64, dts int64) {
	track.SequenceNumber++
	if d.option.OnData != nil {
		d.option.OnData(track, b, pts, dts)
	}
}

// dispatchMediaInfo 缺省值在派发时填充而不落回内部状态，这样后到的精确值仍然可以生效
func (d *Demuxer) dispatchMediaInfo() {
	if d.option.OnMediaInfo == nil {
		return
	}
	info := d.mediaInfo
	if info.PixFmt == "" {
		info.PixFmt = "yuv420p"
	}
	if info.ColorRange == "" {
		info.ColorRange = "limited"
	}
	if info.ColorSpace == "" {
		info.ColorSpace = "bt709"
	}
	if info.ColorTransfer == "" {
		info.ColorTransfer = "bt709"
	}
	if info.ColorPrimaries == "" {
		info.ColorPrimaries = "bt709"
	}
	if info.ChromaFormat == "" {
		info.ChromaFormat = "4:2:0"
	}
	if info.BitDepth == 0 {
		info.BitDepth = 8
	}
	d.option.OnMediaInfo(info)
}

func (d *Demuxer) calcDataRate() {
	if !d.beginTimeSet || d.endTime <= d.beginTime {
		return
	}
	duration := float64(d.endTime-d.beginTime) / 1000
	d.mediaInfo.AudioDataRate = int(math.Round(float64(d.audioByteCount) * 8 / duration / 1000))
	d.mediaInfo.VideoDataRate = int(math.Round(float64(d.videoByteCount) * 8 / duration / 1000))
}

func numberField(obj map[string]interface{}, key string) (float64, bool) {
	v, ok := obj[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// cts在flv中是24位有符号数
//
// 0xFFFFFF -> -1, 0x000001 -> 1
func signExtend24(v uint32) int32 {
	return int32(v<<8) >> 8
}
