// Package api 組裝 gin router。
//
// 路由分為公開的 /login、/health 與 /todos 底下的 CRUD 及變更推送，
// 全部掛在 server.base_path 之下。handlers 子包負責把請求轉成服務呼叫。
package api
