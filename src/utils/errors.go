package utils

import "errors"

// 各阶段共用的错误类型，调用方用 errors.Is 判断
var (
	ErrFileNotFound   = errors.New("input file not found")
	ErrParse          = errors.New("malformed input")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrGroupArity     = errors.New("group by needs one or two columns")
	ErrNoRows         = errors.New("input has no data rows")
)
