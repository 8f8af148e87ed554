// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"bufio"
	"context"
	"errors"

	ts "github.com/asticode/go-astits"
	"github.com/haivision/srtgo"
	"github.com/q191201771/flvmse/pkg/aac"
	"github.com/q191201771/flvmse/pkg/avc"
	"github.com/q191201771/flvmse/pkg/mse"
	"github.com/q191201771/naza/pkg/nazalog"
)

type analyzer struct {
	ctx     context.Context
	socket  *srtgo.SrtSocket
	demuxer *ts.Demuxer

	pat        *ts.PATData
	pmts       map[uint16]*ts.PMTData
	gotAllPmts bool

	streamTypes map[uint16]ts.StreamType

	videoDescribed bool
	audioDescribed bool
}

func newAnalyzer(ctx context.Context, socket *srtgo.SrtSocket) *analyzer {
	return &analyzer{
		ctx:         ctx,
		socket:      socket,
		demuxer:     ts.NewDemuxer(ctx, bufio.NewReader(socket)),
		pmts:        make(map[uint16]*ts.PMTData),
		streamTypes: make(map[uint16]ts.StreamType),
	}
}

func (a *analyzer) Run() {
	defer a.socket.Close()
	for {
		d, err := a.demuxer.NextData()
		if err != nil {
			if err == ts.ErrNoMorePackets || errors.Is(err, srtgo.EConnLost) {
				nazalog.Infof("stream disconnected")
				return
			}
			nazalog.Errorf("demux failed. err=%+v", err)
			return
		}

		if d.PAT != nil {
			a.pat = d.PAT
			a.gotAllPmts = false
			continue
		}

		if d.PMT != nil {
			if a.pat == nil {
				continue
			}
			a.pmts[d.PMT.ProgramNumber] = d.PMT

			a.gotAllPmts = true
			for _, pro := range a.pat.Programs {
				if _, ok := a.pmts[pro.ProgramNumber]; !ok {
					a.gotAllPmts = false
					break
				}
			}
			if !a.gotAllPmts {
				continue
			}

			for _, pmt := range a.pmts {
				for _, es := range pmt.ElementaryStreams {
					if _, ok := a.streamTypes[es.ElementaryPID]; ok {
						continue
					}
					a.streamTypes[es.ElementaryPID] = es.StreamType
					nazalog.Infof("elementary stream. pid=%d, streamType=%d", es.ElementaryPID, es.StreamType)
				}
			}
		}
		if !a.gotAllPmts {
			continue
		}

		if d.PES != nil {
			pid := d.FirstPacket.Header.PID
			switch a.streamTypes[pid] {
			case ts.StreamTypeH264Video:
				a.describeVideo(d.PES.Data)
			case ts.StreamTypeAACAudio:
				a.describeAudio(d.PES.Data)
			}
		}
	}
}

func (a *analyzer) describeVideo(es []byte) {
	if a.videoDescribed {
		return
	}
	nals, err := avc.SplitNaluAnnexb(es)
	if err != nil {
		nazalog.Warnf("split annexb failed. err=%+v", err)
		return
	}
	for _, nal := range nals {
		if len(nal) == 0 || avc.ParseNaluType(nal[0]) != avc.NaluTypeSps {
			continue
		}
		sps, err := avc.ParseSps(nal)
		if err != nil {
			nazalog.Warnf("parse sps failed. err=%+v", err)
			return
		}
		nazalog.Infof("video. codec=%s, %dx%d, profile=%d, level=%d, pixFmt=%s, chroma=%s, bitDepth=%d",
			mse.BuildAvcCodecString(sps.ProfileIdc, sps.LevelIdc),
			sps.Width, sps.Height, sps.ProfileIdc, sps.LevelIdc,
			sps.PixFmt(), sps.ChromaFormatReadable(), sps.BitDepth())
		if vui := sps.Vui; vui != nil {
			nazalog.Infof("video color. range=%s, primaries=%s, transfer=%s, space=%s, fps=%v",
				avc.ColorRangeReadable(vui.FullRange),
				avc.ColourPrimariesReadable(vui.ColourPrimaries),
				avc.TransferCharacteristicsReadable(vui.TransferCharacteristics),
				avc.MatrixCoefficientsReadable(vui.MatrixCoefficients),
				vui.Fps)
		}
		a.videoDescribed = true
		return
	}
}

func (a *analyzer) describeAudio(es []byte) {
	if a.audioDescribed || len(es) < aac.AdtsHeaderLength {
		return
	}
	ctx, err := aac.NewAdtsHeaderContext(es[:aac.AdtsHeaderLength])
	if err != nil {
		nazalog.Warnf("parse adts header failed. err=%+v", err)
		return
	}
	hz, _ := ctx.AscCtx.SamplingFrequency()
	nazalog.Infof("audio. codec=%s, sampleRate=%d, channel=%d, objectType=%d",
		mse.CodecStringAac, hz, ctx.AscCtx.ChannelConfiguration, ctx.AscCtx.AudioObjectType)
	a.audioDescribed = true
}
