// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/naza/pkg/nazabits"
)

// Baseline profile，320x240，无裁剪，无vui
var spsBaseline320 = []byte{0x67, 0x42, 0xC0, 0x1E, 0xF4, 0x0A, 0x0F, 0x80}

// Baseline profile，1920x1088，无裁剪
var spsNoCrop1088 = []byte{0x67, 0x42, 0xC0, 0x28, 0xF4, 0x03, 0xC0, 0x11, 0x20}

// 同上，frame_crop_bottom_offset=4，裁剪为1920x1080
var spsCrop1080 = []byte{0x67, 0x42, 0xC0, 0x28, 0xF4, 0x03, 0xC0, 0x11, 0x2F, 0x28}

// High profile，10bit，1920x1088，vui中带bt2020色彩描述和timing信息
// video_format=5, full_range=1, primaries=9, transfer=16, matrix=9,
// num_units_in_tick=1000, time_scale=60000
var spsHigh10Bit = []byte{
	0x67, 0x64, 0x00, 0x28,
	0xA6, 0xCB, 0x40, 0x3C, 0x01, 0x12, 0x4D, 0xC2,
	0x44, 0x02, 0x50, 0x00, 0x00, 0x3E, 0x80, 0x00,
	0x0E, 0xA6, 0x08, 0x00,
}

func TestParseSpsBaseline(t *testing.T) {
	sps, err := ParseSps(spsBaseline320)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint8(66), sps.ProfileIdc)
	assert.Equal(t, uint8(0xC0), sps.ConstraintSetFlags)
	assert.Equal(t, uint8(30), sps.LevelIdc)
	assert.Equal(t, 320, sps.Width)
	assert.Equal(t, 240, sps.Height)
	assert.Equal(t, uint32(1), sps.ChromaFormatIdc)
	assert.Equal(t, 8, sps.BitDepth())
	assert.Equal(t, "4:2:0", sps.ChromaFormatReadable())
	assert.Equal(t, "yuv420p", sps.PixFmt())
	assert.Equal(t, (*Vui)(nil), sps.Vui)
}

func TestParseSpsCropping(t *testing.T) {
	sps, err := ParseSps(spsNoCrop1088)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1920, sps.Width)
	assert.Equal(t, 1088, sps.Height)

	sps, err = ParseSps(spsCrop1080)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1920, sps.Width)
	assert.Equal(t, 1080, sps.Height)
}

func TestParseSpsHighProfileVui(t *testing.T) {
	sps, err := ParseSps(spsHigh10Bit)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint8(100), sps.ProfileIdc)
	assert.Equal(t, uint8(40), sps.LevelIdc)
	assert.Equal(t, uint32(1), sps.ChromaFormatIdc)
	assert.Equal(t, uint32(2), sps.BitDepthLumaMinus8)
	assert.Equal(t, 10, sps.BitDepth())
	assert.Equal(t, "yuv420p10le", sps.PixFmt())
	assert.Equal(t, 1920, sps.Width)
	assert.Equal(t, 1088, sps.Height)

	assert.IsNotNil(t, sps.Vui)
	assert.Equal(t, uint8(5), sps.Vui.VideoFormat)
	assert.Equal(t, true, sps.Vui.FullRange)
	assert.Equal(t, uint8(9), sps.Vui.ColourPrimaries)
	assert.Equal(t, uint8(16), sps.Vui.TransferCharacteristics)
	assert.Equal(t, uint8(9), sps.Vui.MatrixCoefficients)
	assert.Equal(t, float64(30), sps.Vui.Fps)

	assert.Equal(t, "bt2020", ColourPrimariesReadable(sps.Vui.ColourPrimaries))
	assert.Equal(t, "smpte2084", TransferCharacteristicsReadable(sps.Vui.TransferCharacteristics))
	assert.Equal(t, "bt2020nc", MatrixCoefficientsReadable(sps.Vui.MatrixCoefficients))
	assert.Equal(t, "full", ColorRangeReadable(sps.Vui.FullRange))
}

// 截断的sps，头部字段之后解析失败，保留已解析的部分
func TestParseSpsPartial(t *testing.T) {
	sps, err := ParseSps(spsBaseline320[:5])
	assert.Equal(t, nil, err)
	assert.Equal(t, uint8(66), sps.ProfileIdc)
	assert.Equal(t, uint8(30), sps.LevelIdc)
	assert.Equal(t, 0, sps.Width)
	assert.Equal(t, 0, sps.Height)
}

func TestReadSignedGolomb(t *testing.T) {
	// ue码字0,1,2,3,4依次对应se值0,1,-1,2,-2
	// 比特流: 1 010 011 00100 00101 -> 10100110 01000010 1(000...)
	b := []byte{0xA6, 0x42, 0x80}
	br := nazabits.NewBitReader(b)
	expected := []int32{0, 1, -1, 2, -2}
	for _, v := range expected {
		actual, err := readSignedGolomb(&br)
		assert.Equal(t, nil, err)
		assert.Equal(t, v, actual)
	}
}

func TestSkipScalingList(t *testing.T) {
	// 16个delta_scale全为0的scaling list，共16个ue(0)，即16个bit 1
	b := []byte{0xFF, 0xFF}
	br := nazabits.NewBitReader(b)
	err := skipScalingList(&br, 16)
	assert.Equal(t, nil, err)

	// delta_scale=-8使nextScale变为0，之后不再读取delta_scale
	// se(-8)的ue码字为16: 000010001，后续字节不足也不影响
	b = []byte{0x08, 0x80}
	br = nazabits.NewBitReader(b)
	err = skipScalingList(&br, 16)
	assert.Equal(t, nil, err)
}

func TestPixFmtMapping(t *testing.T) {
	testCases := []struct {
		chromaFormatIdc    uint32
		bitDepthLumaMinus8 uint32
		pixFmt             string
		chroma             string
	}{
		{0, 0, "yuv420p", "4:2:0"},
		{1, 0, "yuv420p", "4:2:0"},
		{1, 2, "yuv420p10le", "4:2:0"},
		{2, 0, "yuv422p", "4:2:2"},
		{2, 2, "yuv422p10le", "4:2:2"},
		{3, 0, "yuv444p", "4:4:4"},
		{3, 2, "yuv444p10le", "4:4:4"},
	}
	for _, tc := range testCases {
		sps := Sps{ChromaFormatIdc: tc.chromaFormatIdc, BitDepthLumaMinus8: tc.bitDepthLumaMinus8}
		assert.Equal(t, tc.pixFmt, sps.PixFmt())
		assert.Equal(t, tc.chroma, sps.ChromaFormatReadable())
	}

	// separate_colour_plane_flag不影响报告的chroma format
	sps := Sps{ChromaFormatIdc: 3, SeparateColourPlaneFlag: 1}
	assert.Equal(t, "4:4:4", sps.ChromaFormatReadable())
}

func TestColorNameUnknown(t *testing.T) {
	assert.Equal(t, "unknown", ColourPrimariesReadable(3))
	assert.Equal(t, "unknown", TransferCharacteristicsReadable(3))
	assert.Equal(t, "unknown", MatrixCoefficientsReadable(11))
	assert.Equal(t, "limited", ColorRangeReadable(false))
}
