// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/haivision/srtgo"
	"github.com/q191201771/flvmse/pkg/base"
	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/nazalog"
)

// 接收srt推过来的mpegts流，解析其中h264和aac的配置信息并打印，
// 与flv链路共用pkg/avc和pkg/aac的解析

func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	addr, port := parseFlag()

	options := make(map[string]string)
	options["transtype"] = "live"

	sck := srtgo.NewSrtSocket(addr, port, options)
	defer sck.Close()

	if err := sck.Listen(1); err != nil {
		nazalog.Fatalf("listen failed. err=%+v", err)
	}
	nazalog.Infof("srt listening. addr=%s, port=%d", addr, port)

	for {
		socket, peer, err := sck.Accept()
		if err != nil {
			nazalog.Errorf("accept failed. err=%+v", err)
			continue
		}
		nazalog.Infof("socket connected. peer=%+v", peer)
		go newAnalyzer(context.Background(), socket).Run()
	}
}

func parseFlag() (string, uint16) {
	binInfoFlag := flag.Bool("v", false, "show bin info")
	addr := flag.String("addr", "0.0.0.0", "specify listen addr")
	port := flag.Int("port", 6001, "specify listen port")
	flag.Parse()
	if *binInfoFlag {
		_, _ = fmt.Fprint(os.Stderr, bininfo.StringifyMultiLine())
		os.Exit(0)
	}
	if *port <= 0 || *port > 65535 {
		flag.Usage()
		base.OsExitAndWaitPressIfWindows(1)
	}
	return *addr, uint16(*port)
}
