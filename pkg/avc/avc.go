// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"github.com/q191201771/flvmse/pkg/base"
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabits"
)

var NaluStartCode4 = []byte{0x0, 0x0, 0x0, 0x1}

var naluTypeMapping = map[uint8]string{
	NaluTypeSlice:    "SLICE",
	NaluTypeIdrSlice: "IDR",
	NaluTypeSei:      "SEI",
	NaluTypeSps:      "SPS",
	NaluTypePps:      "PPS",
	NaluTypeAud:      "AUD",
}

var sliceTypeMapping = map[uint32]string{
	0: "P",
	1: "B",
	2: "I",
	3: "SP",
	4: "SI",
}

const (
	NaluTypeSlice    uint8 = 1
	NaluTypeIdrSlice uint8 = 5
	NaluTypeSei      uint8 = 6
	NaluTypeSps      uint8 = 7
	NaluTypePps      uint8 = 8
	NaluTypeAud      uint8 = 9
)

// ParseNaluType 取nalu的第一个字节
func ParseNaluType(v uint8) uint8 {
	return v & 0x1f
}

func ParseNaluTypeReadable(v uint8) string {
	t, ok := naluTypeMapping[ParseNaluType(v)]
	if !ok {
		return "unknown"
	}
	return t
}

// ParseSliceType 解析slice nalu中的slice type
//
// @param nalu: 完整的nalu，包含nalu header
func ParseSliceType(nalu []byte) (uint32, error) {
	if len(nalu) < 2 {
		return 0, base.ErrShortBuffer
	}

	br := nazabits.NewBitReader(nalu[1:])
	// first_mb_in_slice
	if _, err := br.ReadGolomb(); err != nil {
		return 0, err
	}
	sliceType, err := br.ReadGolomb()
	if err != nil {
		return 0, err
	}
	// 5-9和0-4语义相同
	if sliceType > 4 {
		sliceType -= 5
	}
	return sliceType, nil
}

func ParseSliceTypeReadable(nalu []byte) (string, error) {
	t, err := ParseSliceType(nalu)
	if err != nil {
		return "unknown", err
	}
	ret, ok := sliceTypeMapping[t]
	if !ok {
		return "unknown", nil
	}
	return ret, nil
}

// SplitNaluAvcc 将avcc格式的数据切割成nalu列表
//
// @param b: 多个(4字节长度前缀 + nalu)组成的内存块
//
// @return nals: 内存块引用输入<b>，不拷贝
func SplitNaluAvcc(b []byte) (nals [][]byte, err error) {
	err = IterateNaluAvcc(b, func(nal []byte) {
		nals = append(nals, nal)
	})
	return
}

func IterateNaluAvcc(b []byte, handler func(nal []byte)) error {
	for i := 0; i != len(b); {
		if i+4 > len(b) {
			return base.ErrShortBuffer
		}
		naluLen := int(bele.BeUint32(b[i:]))
		i += 4
		if i+naluLen > len(b) {
			return base.ErrShortBuffer
		}
		handler(b[i : i+naluLen])
		i += naluLen
	}
	return nil
}

// SplitNaluAnnexb 将annexb格式的数据切割成nalu列表
//
// @param b: 多个(start code + nalu)组成的内存块，start code为00 00 01或00 00 00 01
//
// @return nals: 内存块引用输入<b>，不拷贝
func SplitNaluAnnexb(b []byte) (nals [][]byte, err error) {
	err = IterateNaluAnnexb(b, func(nal []byte) {
		nals = append(nals, nal)
	})
	return
}

func IterateNaluAnnexb(b []byte, handler func(nal []byte)) error {
	prev := -1
	i := 0
	for i+3 <= len(b) {
		if b[i] == 0x00 && b[i+1] == 0x00 {
			if b[i+2] == 0x01 {
				if prev != -1 {
					handler(b[prev:i])
				}
				i += 3
				prev = i
				continue
			}
			if i+4 <= len(b) && b[i+2] == 0x00 && b[i+3] == 0x01 {
				if prev != -1 {
					handler(b[prev:i])
				}
				i += 4
				prev = i
				continue
			}
		}
		i++
	}
	if prev == -1 {
		return base.ErrAvc
	}
	handler(b[prev:])
	return nil
}

// EbspToRbsp 去除h264的防竞争字节
//
// 00 00 03 -> 00 00
//
// @return 内存块为独立新申请
func EbspToRbsp(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if i >= 2 && b[i] == 0x03 && b[i-1] == 0x00 && b[i-2] == 0x00 {
			continue
		}
		out = append(out, b[i])
	}
	return out
}

// DecoderConfigurationRecord
//
// <H.264-AVC-ISO_IEC_14496-15.pdf>
// <5.2.4.1.1 Syntax>
type DecoderConfigurationRecord struct {
	ConfigurationVersion uint8
	AvcProfileIndication uint8
	ProfileCompatibility uint8
	AvcLevelIndication   uint8
	LengthSizeMinusOne   uint8

	// 第一个sps和第一个pps的裸数据，独立新申请的内存块，不引用输入
	Sps []byte
	Pps []byte

	// 对Sps的解析结果
	SpsCtx Sps
}

// ParseDecoderConfigurationRecord
//
// @param b: AVCDecoderConfigurationRecord的内存块。
//           注意，如果源头是rtmp message或flv tag的payload，应去除头部5字节(类型2字节+cts3字节)
func ParseDecoderConfigurationRecord(b []byte) (dcr DecoderConfigurationRecord, err error) {
	if len(b) < 6 {
		return dcr, base.ErrAvcDcrShortBuffer
	}

	dcr.ConfigurationVersion = b[0]
	dcr.AvcProfileIndication = b[1]
	dcr.ProfileCompatibility = b[2]
	dcr.AvcLevelIndication = b[3]
	dcr.LengthSizeMinusOne = b[4] & 0x03

	index := 5
	numOfSps := int(b[index] & 0x1f)
	index++
	for i := 0; i < numOfSps; i++ {
		if index+2 > len(b) {
			return dcr, base.ErrAvcDcrShortBuffer
		}
		lenOfSps := int(bele.BeUint16(b[index:]))
		index += 2
		if index+lenOfSps > len(b) {
			return dcr, base.ErrAvcDcrShortBuffer
		}
		// 只取第一个
		if dcr.Sps == nil {
			dcr.Sps = append(dcr.Sps, b[index:index+lenOfSps]...)
		}
		index += lenOfSps
	}

	if index+1 > len(b) {
		return dcr, base.ErrAvcDcrShortBuffer
	}
	numOfPps := int(b[index] & 0x1f)
	index++
	for i := 0; i < numOfPps; i++ {
		if index+2 > len(b) {
			return dcr, base.ErrAvcDcrShortBuffer
		}
		lenOfPps := int(bele.BeUint16(b[index:]))
		index += 2
		if index+lenOfPps > len(b) {
			return dcr, base.ErrAvcDcrShortBuffer
		}
		if dcr.Pps == nil {
			dcr.Pps = append(dcr.Pps, b[index:index+lenOfPps]...)
		}
		index += lenOfPps
	}

	if dcr.Sps == nil {
		return dcr, base.ErrAvc
	}
	dcr.SpsCtx, err = ParseSps(dcr.Sps)
	return dcr, err
}
