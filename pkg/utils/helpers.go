package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// Float64Ptr 返回float64的指针
func Float64Ptr(f float64) *float64 {
	return &f
}

// CalculateMD5 计算字节切片的MD5(hex)
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}
