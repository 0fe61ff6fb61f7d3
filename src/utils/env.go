package utils

import (
	"os"

	"github.com/joho/godotenv"
)

// ConfigDirEnv 指定配置目录的环境变量
const ConfigDirEnv = "SURVEY_CONFIG_DIR"

// LoadEnv 加载当前目录下的 .env，文件不存在不算错误
func LoadEnv() bool {
	return godotenv.Load() == nil
}

// ResolveConfigDir 优先使用命令行参数，其次环境变量，最后 ./config
func ResolveConfigDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	return "./config"
}
