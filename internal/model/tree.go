package model

const (
	NodeTypeFolder        = "FolderNode"
	NodeTypeQuestionnaire = "QuestionnaireNode"

	RootQuestionnaireFolder = "Questionnaires"
)

// TreeFolder 问卷分类目录，名称与问卷展示类型对应
type TreeFolder struct {
	BaseModel
	Name     string `gorm:"size:64;not null;index" json:"name"`
	ParentID *uint  `gorm:"index" json:"parentId,omitempty"`
}

func (TreeFolder) TableName() string {
	return "tree_folders"
}

// Node 导航树节点；FolderNode 指向 TreeFolder，QuestionnaireNode 指向问卷
type Node struct {
	BaseModel
	Type         string `gorm:"size:32;not null;index:idx_node_object" json:"type"`
	ParentID     *uint  `gorm:"index" json:"parentId,omitempty"`
	NodeObjectID uint   `gorm:"not null;index:idx_node_object" json:"nodeObjectId"`
}

func (Node) TableName() string {
	return "nodes"
}

// CategoryFolders 迁移时创建的分类目录
var CategoryFolders = []string{
	"Review",
	"Metareview",
	"Author Feedback",
	"Teammate Review",
	"Survey",
	"Assignment Survey",
	"Global Survey",
	"Course Survey",
	"Bookmark Rating",
	"Quiz",
}
