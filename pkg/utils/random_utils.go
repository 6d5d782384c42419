package utils

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"
)

// RandomInt32 生成一个安全的随机32位整数
func RandomInt32() int32 {
	var num int32
	err := binary.Read(rand.Reader, binary.BigEndian, &num)
	if err != nil {
		panic("generate random int32 failed")
	}

	return num
}

// AttachmentFileName 生成附件存储文件名，保留原始扩展名
// 格式: attachment-<毫秒时间戳>-<随机数><扩展名>
func AttachmentFileName(originalName string) string {
	suffix := RandomInt32()
	if suffix < 0 {
		suffix = -suffix
	}
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("attachment-%d-%d%s", time.Now().UnixMilli(), suffix, ext)
}
