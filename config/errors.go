package config

import "errors"

var (
	// ErrNilConfig 配置为空.
	ErrNilConfig = errors.New("config: 配置为空")

	// ErrFileNotFound 找不到配置文件.
	ErrFileNotFound = errors.New("config: 找不到配置文件")

	// ErrUnsupportedFormat 文件格式不受支持.
	ErrUnsupportedFormat = errors.New("config: 不支持的文件格式")

	// ErrRead 读取或解析文件失败.
	ErrRead = errors.New("config: 读取配置失败")

	// ErrDecode 配置值无法解码到目标结构.
	ErrDecode = errors.New("config: 解码配置失败")

	// ErrInvalid 配置未通过验证.
	ErrInvalid = errors.New("config: 配置无效")

	// ErrInvalidJob 任务配置无效.
	ErrInvalidJob = errors.New("config: 任务配置无效")
)
