// Package middleware 提供 /todos 路由使用的 Bearer token 驗證。
package middleware
