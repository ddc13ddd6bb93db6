package repo

import "errors"

var (
	// ErrRepoExists 仓库 ID 已注册
	ErrRepoExists = errors.New("repository already exists")

	// ErrRepoNotFound 仓库未注册
	ErrRepoNotFound = errors.New("repository not found")

	// ErrInvalidRepo 仓库条目缺少必要字段
	ErrInvalidRepo = errors.New("invalid repository")

	// ErrEmptyRootCommit 根提交为空，无法生成仓库 ID
	ErrEmptyRootCommit = errors.New("empty root commit")
)
