// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"errors"
	"fmt"
)

// ----- 通用的 ---------------------------------------------------------------------------------------------------------

var ErrShortBuffer = errors.New("flvmse: buffer too short")

// ----- pkg/aac -------------------------------------------------------------------------------------------------------

var ErrAac = errors.New("flvmse.aac: invalid data")

// ----- pkg/avc -------------------------------------------------------------------------------------------------------

var (
	ErrAvc               = errors.New("flvmse.avc: invalid data")
	ErrAvcDcrShortBuffer = errors.New("flvmse.avc: decoder configuration record too short")
)

// ----- pkg/amf0 ------------------------------------------------------------------------------------------------------

var (
	ErrAmfInvalidType = errors.New("flvmse.amf0: invalid amf0 type")
	ErrAmfTooShort    = errors.New("flvmse.amf0: too short to unmarshal amf0 data")
)

func NewErrAmfInvalidType(b byte) error {
	return fmt.Errorf("%w. b=%d", ErrAmfInvalidType, b)
}

// ----- pkg/flv -------------------------------------------------------------------------------------------------------

var (
	// ErrFlvFormat 首次喂入的数据签名不是"FLV"时由ParseChunks返回。
	// tag级别的framing异常（比如prev tag size不匹配）只记录警告，不返回该错误
	ErrFlvFormat = errors.New("flvmse.flv: invalid flv format")

	ErrFlv = errors.New("flvmse.flv: fxxk")
)

func NewErrFlvFormat(msg string) error {
	return fmt.Errorf("%w. %s", ErrFlvFormat, msg)
}

// ---------------------------------------------------------------------------------------------------------------------
