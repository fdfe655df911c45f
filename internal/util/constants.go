package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeCSV = "text/csv"
)

// 缓存键前缀
const (
	CacheKeyQuestionnaire = "rubric:questionnaire:"
	CacheKeyQuestionTypes = "rubric:question_types"
)
