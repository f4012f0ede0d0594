package model

import "github.com/zeromicro/go-zero/core/stores/sqlx"

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = sqlx.ErrNotFound
