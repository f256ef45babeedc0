package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"
)

// Load 从文件加载配置.
func Load[T any](path string, opts ...Option) (*T, error) {
	o := newLoadOptions(opts)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if o.format == "" && FormatOf(path) == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	v := o.viper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return decode[T](v)
}

// MustLoad 加载配置，失败时 panic.
func MustLoad[T any](path string, opts ...Option) *T {
	cfg, err := Load[T](path, opts...)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadFromBytes 从内存中的内容加载配置.
func LoadFromBytes[T any](data []byte, format string, opts ...Option) (*T, error) {
	o := newLoadOptions(append(opts, WithFormat(format)))

	v := o.viper()
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return decode[T](v)
}

// LoadWithSearch 依次在 dirs 中查找名为 name 的配置文件，扩展名任意.
func LoadWithSearch[T any](name string, dirs []string, opts ...Option) (*T, error) {
	v := newLoadOptions(opts).viper()
	v.SetConfigName(name)
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s %v", ErrFileNotFound, name, dirs)
		}
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return decode[T](v)
}

// decode 解码到 T，随后依次填充默认值和验证.
func decode[T any](v *viper.Viper) (*T, error) {
	cfg := new(T)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if d, ok := any(cfg).(Defaulter); ok {
		d.ApplyDefaults()
	}
	if val, ok := any(cfg).(Validatable); ok {
		if err := val.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return cfg, nil
}
