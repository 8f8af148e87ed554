// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package flv

import (
	"os"

	"github.com/q191201771/flvmse/pkg/base"
)

type FileWriter struct {
	fp *os.File
}

func (fw *FileWriter) Open(filename string) (err error) {
	fw.fp, err = os.Create(filename)
	return
}

func (fw *FileWriter) WriteFlvHeader() error {
	return fw.WriteRaw(FlvHeader)
}

func (fw *FileWriter) WriteTag(tag Tag) error {
	return fw.WriteRaw(tag.Raw)
}

func (fw *FileWriter) WriteRaw(b []byte) (err error) {
	if fw.fp == nil {
		return base.ErrFlv
	}
	_, err = fw.fp.Write(b)
	return
}

func (fw *FileWriter) Dispose() error {
	if fw.fp == nil {
		return base.ErrFlv
	}
	return fw.fp.Close()
}

func (fw *FileWriter) Name() string {
	if fw.fp == nil {
		return ""
	}
	return fw.fp.Name()
}
