// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package flv

import (
	"io"
	"os"
)

type FileReader struct {
	fp *os.File
}

func (fr *FileReader) Open(filename string) (err error) {
	fr.fp, err = os.Open(filename)
	return
}

// ReadFlvHeader 读取9字节的文件头和4字节的PreviousTagSize0
func (fr *FileReader) ReadFlvHeader() ([]byte, error) {
	flvHeader := make([]byte, FlvHeaderSize+PrevTagSizeFieldSize)
	_, err := io.ReadFull(fr.fp, flvHeader)
	return flvHeader, err
}

func (fr *FileReader) ReadTag() (Tag, error) {
	return readTag(fr.fp)
}

func (fr *FileReader) Dispose() {
	if fr.fp != nil {
		_ = fr.fp.Close()
	}
}

// ReadAllTagsFromFlvFile 一次性读取一个flv文件中的所有tag
func ReadAllTagsFromFlvFile(filename string) ([]Tag, error) {
	var tags []Tag

	var fr FileReader
	defer fr.Dispose()
	if err := fr.Open(filename); err != nil {
		return nil, err
	}
	if _, err := fr.ReadFlvHeader(); err != nil {
		return nil, err
	}

	for {
		tag, err := fr.ReadTag()
		if err != nil {
			if err == io.EOF {
				return tags, nil
			}
			return tags, err
		}
		tags = append(tags, tag)
	}
}
