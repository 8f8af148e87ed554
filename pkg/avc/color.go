// Copyright 2025, Chef.  All rights reserved.
// https://github.com/q191201771/flvmse
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

// 色彩相关code到可读名称的映射
//
// <ISO-14496-10.pdf>
// <Annex E, Table E-3, E-4, E-5>
//
// 表中没有的code统一返回"unknown"

var colourPrimariesMapping = map[uint8]string{
	1:  "bt709",
	2:  "unspecified",
	4:  "bt470m",
	5:  "bt470bg",
	6:  "smpte170m",
	7:  "smpte240m",
	8:  "film",
	9:  "bt2020",
	10: "smpte428",
	11: "smpte431",
	12: "smpte432",
	22: "jedec-p22",
}

var transferCharacteristicsMapping = map[uint8]string{
	1:  "bt709",
	2:  "unspecified",
	4:  "gamma22",
	5:  "gamma28",
	6:  "smpte170m",
	7:  "smpte240m",
	8:  "linear",
	9:  "log100",
	10: "log316",
	11: "iec61966-2-4",
	12: "bt1361e",
	13: "srgb",
	14: "bt2020-10",
	15: "bt2020-12",
	16: "smpte2084",
	17: "smpte428",
	18: "hlg",
}

var matrixCoefficientsMapping = map[uint8]string{
	0:  "gbrap",
	1:  "bt709",
	2:  "unspecified",
	4:  "fcc",
	5:  "bt470bg",
	6:  "smpte170m",
	7:  "smpte240m",
	8:  "ycgco",
	9:  "bt2020nc",
	10: "bt2020c",
	12: "smpte2085",
	13: "chroma-derived-nc",
	14: "chroma-derived-c",
	15: "ictcp",
}

func ColourPrimariesReadable(v uint8) string {
	return lookupColorName(colourPrimariesMapping, v)
}

func TransferCharacteristicsReadable(v uint8) string {
	return lookupColorName(transferCharacteristicsMapping, v)
}

func MatrixCoefficientsReadable(v uint8) string {
	return lookupColorName(matrixCoefficientsMapping, v)
}

func lookupColorName(m map[uint8]string, v uint8) string {
	name, ok := m[v]
	if !ok {
		return "unknown"
	}
	return name
}

// ColorRangeReadable "full" or "limited"
func ColorRangeReadable(fullRange bool) string {
	if fullRange {
		return "full"
	}
	return "limited"
}
