// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"encoding/hex"

	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/naza/pkg/nazaerrors"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/naza/pkg/nazastring"
)

// Vui
//
// <ISO-14496-10.pdf>
// <Annex E, E.1.1 VUI parameters syntax>
//
// 只保留下游关心的字段。色彩三元组不存在时按标准推定为2(unspecified)
type Vui struct {
	VideoFormat             uint8
	FullRange               bool
	ColourPrimaries         uint8
	TransferCharacteristics uint8
	MatrixCoefficients      uint8

	// 由timing info计算得到，fps = time_scale / (2 * num_units_in_tick)
	// 0表示流中没有timing info
	Fps float64
}

// Sps
//
// <ISO-14496-10.pdf>
// <7.3.2.1.1 Sequence parameter set data syntax>
type Sps struct {
	ProfileIdc         uint8
	ConstraintSetFlags uint8 // constraint_set0..5_flag加2位reserved，整字节
	LevelIdc           uint8
	SpsId              uint32

	ChromaFormatIdc         uint32
	SeparateColourPlaneFlag uint8
	BitDepthLumaMinus8      uint32
	BitDepthChromaMinus8    uint32

	// 裁剪后的像素尺寸
	Width  int
	Height int

	Vui *Vui
}

// BitDepth 亮度位深
func (sps *Sps) BitDepth() int {
	return int(sps.BitDepthLumaMinus8) + 8
}

// ChromaFormatReadable
//
// 注意，chroma_format_idc=0(monochrome)以及表之外的取值都归入"4:2:0"，
// chroma_format_idc=3时即使separate_colour_plane_flag=1也报告"4:4:4"
func (sps *Sps) ChromaFormatReadable() string {
	switch sps.ChromaFormatIdc {
	case 2:
		return "4:2:2"
	case 3:
		return "4:4:4"
	}
	return "4:2:0"
}

// PixFmt 由chroma_format_idc和亮度位深确定
func (sps *Sps) PixFmt() string {
	var p string
	switch sps.ChromaFormatIdc {
	case 2:
		p = "yuv422p"
	case 3:
		p = "yuv444p"
	default:
		p = "yuv420p"
	}
	if sps.BitDepth() > 8 {
		p += "10le"
	}
	return p
}

// 高规格的profile族，多出chroma、位深和缩放矩阵字段
var highProfileIdcs = map[uint8]struct{}{
	44: {}, 83: {}, 86: {}, 100: {}, 110: {}, 118: {}, 122: {}, 128: {}, 244: {},
}

// ParseSps 解析sps nalu
//
// @param payload: sps nalu，包含1字节的nalu header，不包含start code或avcc长度前缀。
//                 内部不持有该内存块
//
// 解析尽力而为：profile/level等头部字段解析失败时返回错误；
// 之后的字段解析失败时（比如sps被截断），保留已解析的部分，err返回nil
func ParseSps(payload []byte) (sps Sps, err error) {
	rbsp := EbspToRbsp(payload)
	br := nazabits.NewBitReader(rbsp)

	if err = parseSpsBasic(&br, &sps); err != nil {
		nazalog.Errorf("parse sps basic failed. err=%+v, payload=%s",
			err, hex.Dump(nazastring.SubSliceSafety(payload, 128)))
		return sps, err
	}

	if err = parseSpsExtended(&br, &sps); err != nil {
		// 注意，头部字段已经就绪，保留部分解析结果，不把错误抛给上层
		nazalog.Warnf("parse sps extended failed, keep partial result. err=%+v, payload=%s",
			err, hex.Dump(nazastring.SubSliceSafety(payload, 128)))
	}
	return sps, nil
}

func parseSpsBasic(br *nazabits.BitReader, sps *Sps) error {
	// nalu header
	if _, err := br.ReadBits8(8); err != nil {
		return nazaerrors.Wrap(err)
	}
	var err error
	if sps.ProfileIdc, err = br.ReadBits8(8); err != nil {
		return nazaerrors.Wrap(err)
	}
	if sps.ConstraintSetFlags, err = br.ReadBits8(8); err != nil {
		return nazaerrors.Wrap(err)
	}
	if sps.LevelIdc, err = br.ReadBits8(8); err != nil {
		return nazaerrors.Wrap(err)
	}
	if sps.SpsId, err = br.ReadGolomb(); err != nil {
		return nazaerrors.Wrap(err)
	}
	return nil
}

func parseSpsExtended(br *nazabits.BitReader, sps *Sps) error {
	var err error

	sps.ChromaFormatIdc = 1

	if _, ok := highProfileIdcs[sps.ProfileIdc]; ok {
		if sps.ChromaFormatIdc, err = br.ReadGolomb(); err != nil {
			return nazaerrors.Wrap(err)
		}
		if sps.ChromaFormatIdc == 3 {
			if sps.SeparateColourPlaneFlag, err = br.ReadBits8(1); err != nil {
				return nazaerrors.Wrap(err)
			}
		}
		if sps.BitDepthLumaMinus8, err = br.ReadGolomb(); err != nil {
			return nazaerrors.Wrap(err)
		}
		if sps.BitDepthChromaMinus8, err = br.ReadGolomb(); err != nil {
			return nazaerrors.Wrap(err)
		}
		// qpprime_y_zero_transform_bypass_flag
		if err = br.SkipBits(1); err != nil {
			return nazaerrors.Wrap(err)
		}
		var seqScalingMatrixPresentFlag uint8
		if seqScalingMatrixPresentFlag, err = br.ReadBits8(1); err != nil {
			return nazaerrors.Wrap(err)
		}
		if seqScalingMatrixPresentFlag == 1 {
			n := 8
			if sps.ChromaFormatIdc == 3 {
				n = 12
			}
			for i := 0; i < n; i++ {
				var flag uint8
				if flag, err = br.ReadBits8(1); err != nil {
					return nazaerrors.Wrap(err)
				}
				if flag == 1 {
					size := 16
					if i >= 6 {
						size = 64
					}
					if err = skipScalingList(br, size); err != nil {
						return nazaerrors.Wrap(err)
					}
				}
			}
		}
	}

	// log2_max_frame_num_minus4
	if _, err = br.ReadGolomb(); err != nil {
		return nazaerrors.Wrap(err)
	}
	var picOrderCntType uint32
	if picOrderCntType, err = br.ReadGolomb(); err != nil {
		return nazaerrors.Wrap(err)
	}
	if picOrderCntType == 0 {
		// log2_max_pic_order_cnt_lsb_minus4
		if _, err = br.ReadGolomb(); err != nil {
			return nazaerrors.Wrap(err)
		}
	} else if picOrderCntType == 1 {
		// delta_pic_order_always_zero_flag
		if err = br.SkipBits(1); err != nil {
			return nazaerrors.Wrap(err)
		}
		// offset_for_non_ref_pic, offset_for_top_to_bottom_field
		if _, err = readSignedGolomb(br); err != nil {
			return nazaerrors.Wrap(err)
		}
		if _, err = readSignedGolomb(br); err != nil {
			return nazaerrors.Wrap(err)
		}
		var numRefFramesInPicOrderCntCycle uint32
		if numRefFramesInPicOrderCntCycle, err = br.ReadGolomb(); err != nil {
			return nazaerrors.Wrap(err)
		}
		for i := uint32(0); i < numRefFramesInPicOrderCntCycle; i++ {
			if _, err = readSignedGolomb(br); err != nil {
				return nazaerrors.Wrap(err)
			}
		}
	}

	// max_num_ref_frames
	if _, err = br.ReadGolomb(); err != nil {
		return nazaerrors.Wrap(err)
	}
	// gaps_in_frame_num_value_allowed_flag
	if err = br.SkipBits(1); err != nil {
		return nazaerrors.Wrap(err)
	}

	var picWidthInMbsMinus1 uint32
	var picHeightInMapUnitsMinus1 uint32
	var frameMbsOnlyFlag uint8
	if picWidthInMbsMinus1, err = br.ReadGolomb(); err != nil {
		return nazaerrors.Wrap(err)
	}
	if picHeightInMapUnitsMinus1, err = br.ReadGolomb(); err != nil {
		return nazaerrors.Wrap(err)
	}
	if frameMbsOnlyFlag, err = br.ReadBits8(1); err != nil {
		return nazaerrors.Wrap(err)
	}
	if frameMbsOnlyFlag == 0 {
		// mb_adaptive_frame_field_flag
		if err = br.SkipBits(1); err != nil {
			return nazaerrors.Wrap(err)
		}
	}
	// direct_8x8_inference_flag
	if err = br.SkipBits(1); err != nil {
		return nazaerrors.Wrap(err)
	}

	var cropLeft, cropRight, cropTop, cropBottom uint32
	var frameCroppingFlag uint8
	if frameCroppingFlag, err = br.ReadBits8(1); err != nil {
		return nazaerrors.Wrap(err)
	}
	if frameCroppingFlag == 1 {
		if cropLeft, err = br.ReadGolomb(); err != nil {
			return nazaerrors.Wrap(err)
		}
		if cropRight, err = br.ReadGolomb(); err != nil {
			return nazaerrors.Wrap(err)
		}
		if cropTop, err = br.ReadGolomb(); err != nil {
			return nazaerrors.Wrap(err)
		}
		if cropBottom, err = br.ReadGolomb(); err != nil {
			return nazaerrors.Wrap(err)
		}
	}

	// 注意，裁剪偏移固定乘2，不区分chroma子采样
	sps.Width = int((picWidthInMbsMinus1+1)*16 - (cropLeft+cropRight)*2)
	sps.Height = int((2-uint32(frameMbsOnlyFlag))*(picHeightInMapUnitsMinus1+1)*16 - (cropTop+cropBottom)*2)

	var vuiParametersPresentFlag uint8
	if vuiParametersPresentFlag, err = br.ReadBits8(1); err != nil {
		return nazaerrors.Wrap(err)
	}
	if vuiParametersPresentFlag == 1 {
		if err = parseVui(br, sps); err != nil {
			return nazaerrors.Wrap(err)
		}
	}
	return nil
}

func parseVui(br *nazabits.BitReader, sps *Sps) error {
	vui := &Vui{
		ColourPrimaries:         2,
		TransferCharacteristics: 2,
		MatrixCoefficients:      2,
	}
	sps.Vui = vui

	var flag uint8
	var err error

	// aspect_ratio_info_present_flag
	if flag, err = br.ReadBits8(1); err != nil {
		return err
	}
	if flag == 1 {
		var aspectRatioIdc uint8
		if aspectRatioIdc, err = br.ReadBits8(8); err != nil {
			return err
		}
		// Extended_SAR
		if aspectRatioIdc == 255 {
			if _, err = br.ReadBits16(16); err != nil {
				return err
			}
			if _, err = br.ReadBits16(16); err != nil {
				return err
			}
		}
	}

	// overscan_info_present_flag
	if flag, err = br.ReadBits8(1); err != nil {
		return err
	}
	if flag == 1 {
		if err = br.SkipBits(1); err != nil {
			return err
		}
	}

	// video_signal_type_present_flag
	if flag, err = br.ReadBits8(1); err != nil {
		return err
	}
	if flag == 1 {
		if vui.VideoFormat, err = br.ReadBits8(3); err != nil {
			return err
		}
		var fullRangeFlag uint8
		if fullRangeFlag, err = br.ReadBits8(1); err != nil {
			return err
		}
		vui.FullRange = fullRangeFlag == 1
		// colour_description_present_flag
		if flag, err = br.ReadBits8(1); err != nil {
			return err
		}
		if flag == 1 {
			if vui.ColourPrimaries, err = br.ReadBits8(8); err != nil {
				return err
			}
			if vui.TransferCharacteristics, err = br.ReadBits8(8); err != nil {
				return err
			}
			if vui.MatrixCoefficients, err = br.ReadBits8(8); err != nil {
				return err
			}
		}
	}

	// chroma_loc_info_present_flag
	if flag, err = br.ReadBits8(1); err != nil {
		return err
	}
	if flag == 1 {
		if _, err = br.ReadGolomb(); err != nil {
			return err
		}
		if _, err = br.ReadGolomb(); err != nil {
			return err
		}
	}

	// timing_info_present_flag
	if flag, err = br.ReadBits8(1); err != nil {
		return err
	}
	if flag == 1 {
		var numUnitsInTick, timeScale uint32
		if numUnitsInTick, err = br.ReadBits32(32); err != nil {
			return err
		}
		if timeScale, err = br.ReadBits32(32); err != nil {
			return err
		}
		// fixed_frame_rate_flag
		if err = br.SkipBits(1); err != nil {
			return err
		}
		if numUnitsInTick > 0 && timeScale > 0 {
			vui.Fps = float64(timeScale) / (2 * float64(numUnitsInTick))
		}
	}

	var nalHrdPresentFlag, vclHrdPresentFlag uint8
	if nalHrdPresentFlag, err = br.ReadBits8(1); err != nil {
		return err
	}
	if nalHrdPresentFlag == 1 {
		if err = skipHrdParameters(br); err != nil {
			return err
		}
	}
	if vclHrdPresentFlag, err = br.ReadBits8(1); err != nil {
		return err
	}
	if vclHrdPresentFlag == 1 {
		if err = skipHrdParameters(br); err != nil {
			return err
		}
	}
	if nalHrdPresentFlag == 1 || vclHrdPresentFlag == 1 {
		// low_delay_hrd_flag
		if err = br.SkipBits(1); err != nil {
			return err
		}
	}

	// pic_struct_present_flag
	if err = br.SkipBits(1); err != nil {
		return err
	}

	// bitstream_restriction_flag
	if flag, err = br.ReadBits8(1); err != nil {
		return err
	}
	if flag == 1 {
		// motion_vectors_over_pic_boundaries_flag
		if err = br.SkipBits(1); err != nil {
			return err
		}
		for i := 0; i < 6; i++ {
			if _, err = br.ReadGolomb(); err != nil {
				return err
			}
		}
	}
	return nil
}

// <ISO-14496-10.pdf>
// <Annex E, E.1.2 HRD parameters syntax>
func skipHrdParameters(br *nazabits.BitReader) error {
	cpbCntMinus1, err := br.ReadGolomb()
	if err != nil {
		return err
	}
	// bit_rate_scale, cpb_size_scale
	if err = br.SkipBits(8); err != nil {
		return err
	}
	for i := uint32(0); i <= cpbCntMinus1; i++ {
		if _, err = br.ReadGolomb(); err != nil {
			return err
		}
		if _, err = br.ReadGolomb(); err != nil {
			return err
		}
		// cbr_flag
		if err = br.SkipBits(1); err != nil {
			return err
		}
	}
	// initial_cpb_removal_delay_length_minus1等4个5位字段
	return br.SkipBits(20)
}

// 跳过一个scaling list，只维护递推状态不保留矩阵内容
//
// <ISO-14496-10.pdf>
// <7.3.2.1.1.1 Scaling list syntax>
func skipScalingList(br *nazabits.BitReader, size int) error {
	lastScale := 8
	nextScale := 8
	for i := 0; i < size; i++ {
		if nextScale != 0 {
			delta, err := readSignedGolomb(br)
			if err != nil {
				return err
			}
			nextScale = (lastScale + int(delta) + 256) % 256
		}
		if nextScale != 0 {
			lastScale = nextScale
		}
	}
	return nil
}

// se(v)
// 0 -> 0, 1 -> 1, 2 -> -1, 3 -> 2, 4 -> -2 ...
func readSignedGolomb(br *nazabits.BitReader) (int32, error) {
	v, err := br.ReadGolomb()
	if err != nil {
		return 0, err
	}
	if v%2 == 0 {
		return -int32(v / 2), nil
	}
	return int32(v/2) + 1, nil
}
