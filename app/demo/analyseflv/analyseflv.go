// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/q191201771/flvmse/pkg/avc"
	"github.com/q191201771/flvmse/pkg/base"
	"github.com/q191201771/flvmse/pkg/flv"
	"github.com/q191201771/flvmse/pkg/mse"
	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/bitrate"
	"github.com/q191201771/naza/pkg/nazalog"
)

// 分析flv文件。
// 功能：
// - 按分片将文件喂给增量demuxer，验证任意切割下的解析
// - 打印MediaInfo以及对应的MSE mime串
// - 打印metadata
// - 打印音视频带宽
// - 打印每个视频tag中的nalu类型和slice类型
// - 统计DTS和PTS不相等的tag数量

var printEveryTag = false

func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	filename, chunkSize := parseFlag()

	brTotal := bitrate.New(func(option *bitrate.Option) {
		option.WindowMs = 5000
	})
	brAudio := bitrate.New(func(option *bitrate.Option) {
		option.WindowMs = 5000
	})
	brVideo := bitrate.New(func(option *bitrate.Option) {
		option.WindowMs = 5000
	})

	videoCtsNotZeroCount := 0
	dataCount := 0

	demuxer := flv.NewDemuxer(func(option *flv.DemuxerOption) {
		option.OnData = func(track *base.Track, b []byte, pts int64, dts int64) {
			dataCount++
			switch track.Kind {
			case base.TrackKindAudio:
				brAudio.Add(len(b))
			case base.TrackKindVideo:
				brVideo.Add(len(b))
				if printEveryTag {
					analyseVideoData(b)
				}
			}
		}
		option.OnMediaInfo = func(info base.MediaInfo) {
			nazalog.Infof("media info. %+v", info)
			nazalog.Infof("mse mime type. %s", mse.BuildMimeTypeFromMediaInfo(info))
		}
		option.OnScriptData = func(metadata map[string]interface{}) {
			var buf bytes.Buffer
			buf.WriteString(fmt.Sprintf("-----\ncount:%d\n", len(metadata)))
			for k, v := range metadata {
				buf.WriteString(fmt.Sprintf("  %s: %+v\n", k, v))
			}
			nazalog.Debugf("%s", buf.String())
		}
		option.OnTimestamp = func(pts int64, dts int64) {
			if pts != dts {
				videoCtsNotZeroCount++
			}
		}
	})
	defer demuxer.Dispose()

	fp, err := os.Open(filename)
	nazalog.Assert(nil, err)
	defer fp.Close()

	buf := make([]byte, chunkSize)
	pending := base.NewBuffer(chunkSize * 2)
	for {
		n, err := fp.Read(buf)
		if n > 0 {
			brTotal.Add(n)
			_, _ = pending.Write(buf[:n])
			consumed, pErr := demuxer.ParseChunks(pending.Bytes())
			nazalog.Assert(nil, pErr)
			pending.Skip(consumed)
		}
		if err == io.EOF {
			break
		}
		nazalog.Assert(nil, err)
	}
	if pending.Len() != 0 {
		nazalog.Warnf("stream ends with an incomplete tag. remain=%d", pending.Len())
	}

	nazalog.Infof("stat. dataCount=%d, total=%dKb/s, audio=%dKb/s, video=%dKb/s, videoCtsNotZeroCount=%d",
		dataCount, int(brTotal.Rate()), int(brAudio.Rate()), int(brVideo.Rate()), videoCtsNotZeroCount)
}

func analyseVideoData(b []byte) {
	var buf bytes.Buffer
	err := avc.IterateNaluAvcc(b, func(nal []byte) {
		if len(nal) == 0 {
			return
		}
		sliceTypeReadable, _ := avc.ParseSliceTypeReadable(nal)
		buf.WriteString(fmt.Sprintf(" [%s(%s)(%d)] ", avc.ParseNaluTypeReadable(nal[0]), sliceTypeReadable, len(nal)))
	})
	if err != nil {
		nazalog.Warnf("iterate nalu failed. err=%+v", err)
		return
	}
	nazalog.Debugf("%s", buf.String())
}

func parseFlag() (string, int) {
	binInfoFlag := flag.Bool("v", false, "show bin info")
	i := flag.String("i", "", "specify flv file")
	c := flag.Int("c", 16384, "specify feed chunk size")
	flag.Parse()
	if *binInfoFlag {
		_, _ = fmt.Fprint(os.Stderr, bininfo.StringifyMultiLine())
		os.Exit(0)
	}
	if *i == "" {
		flag.Usage()
		_, _ = fmt.Fprintf(os.Stderr, `Example:
  %s -i test.flv
  %s -i test.flv -c 1
`, os.Args[0], os.Args[0])
		base.OsExitAndWaitPressIfWindows(1)
	}
	return *i, *c
}
