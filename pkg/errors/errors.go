package errors

import "errors"

// ErrStorageUnavailable 存储后端不可达（未连接或连接级故障）
// 读接口据此降级为空结果，写接口直接失败
var ErrStorageUnavailable = errors.New("存储服务暂不可用")
