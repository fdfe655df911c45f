package repository

import (
	"strings"

	"rubric_backend/internal/model"

	"gorm.io/gorm"
)

// TreeRepository 问卷导航树（目录与节点）
type TreeRepository struct {
	DB *gorm.DB
}

func NewTreeRepository(db *gorm.DB) *TreeRepository {
	return &TreeRepository{DB: db}
}

func (r *TreeRepository) WithTx(tx *gorm.DB) *TreeRepository {
	return &TreeRepository{DB: tx}
}

// FindFolderByDisplayType 展示类型中的 % 代表目录名里的空格（"Author%Feedback" 对应 "Author Feedback"），
// 根目录不是分类目录
func (r *TreeRepository) FindFolderByDisplayType(displayType string) (*model.TreeFolder, error) {
	var folder model.TreeFolder
	name := strings.ReplaceAll(displayType, "%", " ")
	err := r.DB.Where("name = ? AND name <> ?", name, model.RootQuestionnaireFolder).Order("id asc").First(&folder).Error
	return &folder, err
}

func (r *TreeRepository) FindFolderNode(folderID uint) (*model.Node, error) {
	var node model.Node
	err := r.DB.Where("type = ? AND node_object_id = ?", model.NodeTypeFolder, folderID).First(&node).Error
	return &node, err
}

// FindOrCreateQuestionnaireNode 每个问卷只有一个节点
func (r *TreeRepository) FindOrCreateQuestionnaireNode(parentID, questionnaireID uint) (*model.Node, error) {
	var node model.Node
	err := r.DB.
		Where("type = ? AND node_object_id = ?", model.NodeTypeQuestionnaire, questionnaireID).
		Attrs(model.Node{ParentID: &parentID}).
		FirstOrCreate(&node, model.Node{Type: model.NodeTypeQuestionnaire, NodeObjectID: questionnaireID}).Error
	return &node, err
}

func (r *TreeRepository) FindQuestionnaireNode(questionnaireID uint) (*model.Node, error) {
	var node model.Node
	err := r.DB.Where("type = ? AND node_object_id = ?", model.NodeTypeQuestionnaire, questionnaireID).First(&node).Error
	return &node, err
}

func (r *TreeRepository) DeleteQuestionnaireNode(questionnaireID uint) error {
	return r.DB.Where("type = ? AND node_object_id = ?", model.NodeTypeQuestionnaire, questionnaireID).
		Delete(&model.Node{}).Error
}

// UnfiledQuestionnaires 没有问卷节点的问卷
func (r *TreeRepository) UnfiledQuestionnaires() ([]model.Questionnaire, error) {
	var qs []model.Questionnaire
	err := r.DB.
		Where("NOT EXISTS (SELECT 1 FROM nodes WHERE nodes.type = ? AND nodes.node_object_id = questionnaires.id AND nodes.deleted_at IS NULL)",
			model.NodeTypeQuestionnaire).
		Order("id asc").
		Find(&qs).Error
	return qs, err
}
