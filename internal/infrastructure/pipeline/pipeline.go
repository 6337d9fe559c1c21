// Package pipeline composes the ordered access-control stages every
// protected route passes through: identity resolution, rate-limit
// admission, then subscription entitlement. Stages are explicit values in a
// list rather than nested middleware closures; the first stage to fail
// short-circuits the rest and routes the error to the terminal translator.
package pipeline

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stage is one access-control step. Attempt either lets the request
// proceed (nil) or fails it with a terminal error.
type Stage interface {
	Name() string
	Attempt(c *gin.Context) error
}

type Pipeline struct {
	stages []Stage
	logger *zap.SugaredLogger
}

// New builds a pipeline running stages in the given order. Order matters:
// identity must come first because later stages key off the caller's id,
// and rate limiting runs before entitlement so repeated probing is bounded
// before it costs a subscription lookup.
func New(logger *zap.SugaredLogger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, logger: logger}
}

// Handler adapts the pipeline to a single gin handler suitable for a route
// group.
func (p *Pipeline) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, stage := range p.stages {
			if err := stage.Attempt(c); err != nil {
				p.fail(c, stage, err)
				return
			}
		}
		c.Next()
	}
}

func (p *Pipeline) fail(c *gin.Context, stage Stage, err error) {
	userID, _ := CurrentUser(c)
	p.logger.Warnw("request rejected",
		"stage", stage.Name(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", userID,
		"error", err,
	)
	WriteError(c, err)
	c.Abort()
}
