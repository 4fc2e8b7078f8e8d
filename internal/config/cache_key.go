package config

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamSettingsKey returns the cache key for the exam settings singleton.
func (r *CacheKeyStruct) ExamSettingsKey() string {
	return "settings:exam"
}

// QuestionSubjectsKey returns the cache key for the distinct subject list.
func (r *CacheKeyStruct) QuestionSubjectsKey() string {
	return "questions:subjects"
}

var CacheKey = NewCacheKeyStruct()
