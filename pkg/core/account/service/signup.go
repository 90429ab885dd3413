package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/field"
)

// SignupAttempt 一次注册提交的原始值，仅在本次请求内有效
type SignupAttempt struct {
	Name     string
	Email    string
	Password string
}

func (a SignupAttempt) Values() []field.Value {
	return []field.Value{
		{Kind: field.KindName, Raw: a.Name},
		{Kind: field.KindEmail, Raw: a.Email},
		{Kind: field.KindPassword, Raw: a.Password},
	}
}

// RejectedError 校验失败：携带原始输入与第一个失败字段的错误
type RejectedError struct {
	Attempt SignupAttempt
	Err     field.FieldError
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("signup rejected on %s: %v", e.Err.Field(), e.Err)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// InsertError 校验全部通过后写入失败；Category 为 CategoryRace 或 CategoryInfra
type InsertError struct {
	Category field.Category
	Err      error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("account insert failed (%s): %v", e.Category, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

// Stage 注册提交的状态机
type Stage int

const (
	StageReceived Stage = iota
	StageValidatingName
	StageValidatingEmail
	StageValidatingPassword
	StageInserting
	StageCommitted
	StageInsertFailed
	StageRejected
)

var stageNames = [...]string{
	"received", "validating_name", "validating_email", "validating_password",
	"inserting", "committed", "insert_failed", "rejected",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// Terminal 终态：committed / insert_failed / rejected
func (s Stage) Terminal() bool {
	return s == StageCommitted || s == StageInsertFailed || s == StageRejected
}

// OutcomeOf 将 Submit 的返回值映射到终态
func OutcomeOf(err error) Stage {
	var rejected *RejectedError
	var insert *InsertError
	switch {
	case err == nil:
		return StageCommitted
	case errors.As(err, &rejected):
		return StageRejected
	case errors.As(err, &insert):
		return StageInsertFailed
	}
	return StageInsertFailed
}

// Submit 服务端重新校验全部字段（不信任客户端状态），顺序 name -> email -> password，遇错即停
func (s *Service) Submit(ctx context.Context, attempt SignupAttempt) (uint, error) {
	stage := StageReceived
	next := func(to Stage) {
		hlog.CtxDebugf(ctx, "signup name=%q %s -> %s", attempt.Name, stage, to)
		stage = to
	}

	next(StageValidatingName)
	if err := field.CheckName(ctx, s.accounts, attempt.Name); err != nil {
		next(StageRejected)
		return 0, &RejectedError{Attempt: attempt, Err: err}
	}

	next(StageValidatingEmail)
	if err := field.CheckEmail(ctx, s.accounts, attempt.Email, nil); err != nil {
		next(StageRejected)
		return 0, &RejectedError{Attempt: attempt, Err: err}
	}

	next(StageValidatingPassword)
	if err := field.CheckPassword(attempt.Password); err != nil {
		next(StageRejected)
		return 0, &RejectedError{Attempt: attempt, Err: err}
	}

	next(StageInserting)
	hash, err := s.hasher.Hash(attempt.Password)
	if err != nil {
		next(StageInsertFailed)
		return 0, &InsertError{Category: field.CategoryInfra, Err: fmt.Errorf("hash password: %w", err)}
	}

	id, err := s.accounts.Insert(ctx, attempt.Name, attempt.Email, hash)
	if err != nil {
		next(StageInsertFailed)
		cat := field.CategoryInfra
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			// 预检查与插入之间被并发请求抢先
			cat = field.CategoryRace
		}
		return 0, &InsertError{Category: cat, Err: err}
	}

	next(StageCommitted)
	hlog.CtxInfof(ctx, "created account id=%d name=%q", id, attempt.Name)
	return id, nil
}
