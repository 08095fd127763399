package models

// Todo 是唯一的業務實體。id 建立後不可變更。
type Todo struct {
	ID       string `json:"id" dynamodbav:"id" gorm:"primaryKey;type:varchar(36)" redis:"id"`
	TaskName string `json:"taskName" dynamodbav:"taskName" gorm:"not null" redis:"taskName"`
	Status   string `json:"status" dynamodbav:"status" gorm:"not null" redis:"status"`
}

// TodoPatch 描述部分更新，nil 欄位保持原值
type TodoPatch struct {
	TaskName *string
	Status   *string
}

// Empty 回傳 patch 是否沒有任何要更新的欄位
func (p TodoPatch) Empty() bool {
	return p.TaskName == nil && p.Status == nil
}

// Apply 把 patch 套用到記錄上
func (p TodoPatch) Apply(todo *Todo) {
	if p.TaskName != nil {
		todo.TaskName = *p.TaskName
	}
	if p.Status != nil {
		todo.Status = *p.Status
	}
}
