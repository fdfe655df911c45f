package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func parseID(name, raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, NewValidationError("invalid %s: %q", name, raw)
	}
	return uint(id), nil
}

// ParseIDParam 解析路径中的 id 参数，非法时返回 ValidationError
func ParseIDParam(c *gin.Context, name string) (uint, error) {
	return parseID(name, c.Param(name))
}

// ParseIDQuery 解析查询字符串中的 id 参数
func ParseIDQuery(c *gin.Context, name string) (uint, error) {
	return parseID(name, c.Query(name))
}

// ParsePage 读取 page/limit 查询参数，非法值回落到默认值
func ParsePage(c *gin.Context, defaultLimit int) (int, int) {
	page := 1
	limit := defaultLimit
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return page, limit
}
