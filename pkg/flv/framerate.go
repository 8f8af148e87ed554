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

	"github.com/q191201771/naza/pkg/circularqueue"
)

const (
	fpsSampleWindowSize = 30
	fpsMinSampleCount   = 5
	fpsReportThreshold  = 0.5
)

// frameRateSampler 通过视频帧的pts间隔和到达的墙钟间隔估计帧率。
//
// 每帧采样值 = 0.7 * (90000 / ptsDelta) + 0.3 * (1000 / wallDelta)，
// 取最近fpsSampleWindowSize个采样的算术平均。
// 注意，pts项沿用90kHz时基的算法，虽然flv时间戳单位是毫秒
type frameRateSampler struct {
	lastPts     int64
	lastPtsSet  bool
	lastArrival time.Time

	win *circularqueue.CircularQueue
	sum float64

	reported     bool
	lastReported float64
}

func newFrameRateSampler() frameRateSampler {
	return frameRateSampler{
		win: circularqueue.New(fpsSampleWindowSize),
	}
}

// sample 喂入一个视频帧的pts和到达时刻。
//
// @return fps:     最近一次报告的帧率估计，尚未报告过时为0
// @return changed: 估计相较上次报告变化超过阈值（或首次就绪）时为true
func (s *frameRateSampler) sample(pts int64, now time.Time) (fps float64, changed bool) {
	if s.lastPtsSet {
		ptsDelta := pts - s.lastPts
		wallDelta := now.Sub(s.lastArrival).Milliseconds()
		if ptsDelta > 0 && wallDelta > 0 {
			rPts := 90000 / float64(ptsDelta)
			rWall := 1000 / float64(wallDelta)
			v := 0.7*rPts + 0.3*rWall

			if s.win.Full() {
				front, _ := s.win.PopFront()
				s.sum -= front.(float64)
			}
			_ = s.win.PushBack(v)
			s.sum += v

			if s.win.Size() >= fpsMinSampleCount {
				mean := s.sum / float64(s.win.Size())
				if !s.reported || math.Abs(mean-s.lastReported) > fpsReportThreshold {
					s.reported = true
					s.lastReported = mean
					changed = true
				}
			}
		}
	}

	s.lastPts = pts
	s.lastPtsSet = true
	s.lastArrival = now
	return s.lastReported, changed
}
