package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"go.uber.org/zap"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

// LoginRequest 同时支持 JSON 与表单提交。
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login godoc
// @Summary      Start an admin session
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "credentials"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  ErrorResponse
// @Router       /admin/login [post]
func (a *API) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid login payload")
		return
	}

	user, err := db.Authenticate(a.db, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrInvalidCredentials) {
			a.logger.Info("admin login rejected", zap.String("username", strings.TrimSpace(req.Username)))
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		a.logger.Error("admin login failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "storage unavailable")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}

// Logout godoc
// @Summary      End the admin session
// @Tags         admin
// @Success      204
// @Router       /admin/logout [post]
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		a.logger.Warn("clear session failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// AuthRequired 是一个简单的认证中间件
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserIDKey) == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// sessionAuthor returns the logged in admin as (id, name).
func sessionAuthor(c *gin.Context) (string, string) {
	session := sessions.Default(c)
	var id string
	switch v := session.Get(sessionUserIDKey).(type) {
	case uint:
		id = uintToString(v)
	case string:
		id = v
	}
	name, _ := session.Get(sessionUsernameKey).(string)
	return id, name
}
