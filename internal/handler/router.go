package handler

import "github.com/gin-gonic/gin"

// Handlers groups every API handler mounted by Register.
type Handlers struct {
	Sessions   *SessionHandler
	Transcript *TranscriptHandler
	Reports    *ReportHandler
	Courses    *CourseHandler
	Exchange   *ExchangeHandler
}

// Register mounts the API under api. sessionAuth guards every route below
// /sessions/:id.
func Register(api gin.IRouter, h Handlers, sessionAuth gin.HandlerFunc) {
	api.POST("/sessions", h.Sessions.Create)

	courses := api.Group("/courses")
	courses.POST("/parse", h.Courses.Parse)
	courses.POST("/format", h.Courses.Format)

	session := api.Group("/sessions/:id", sessionAuth)
	session.GET("", h.Sessions.Get)
	session.DELETE("", h.Sessions.Delete)
	session.POST("/audit", h.Sessions.Audit)
	session.GET("/export", h.Exchange.Export)
	session.POST("/import", h.Exchange.Import)

	transcript := session.Group("/transcript")
	transcript.POST("/programs", h.Transcript.AddProgram)
	transcript.PUT("/programs/:index", h.Transcript.SetProgram)
	transcript.DELETE("/programs/:index", h.Transcript.RemoveProgram)
	transcript.POST("/courses", h.Transcript.AddCourse)
	transcript.PATCH("/courses/:index", h.Transcript.UpdateCourse)
	transcript.DELETE("/courses/:index", h.Transcript.RemoveCourse)
	transcript.POST("/sample", h.Transcript.LoadSample)

	report := session.Group("/reports/:report")
	report.DELETE("/renames", h.Reports.ClearRename)

	block := report.Group("/block")
	block.GET("", h.Reports.Block)
	block.PATCH("", h.Reports.Patch)
	block.POST("/children", h.Reports.InsertChild)
	block.DELETE("/children/:index", h.Reports.RemoveChild)
	block.POST("/notes", h.Reports.AddNote)
	block.PUT("/notes/:index", h.Reports.UpdateNote)
	block.DELETE("/notes/:index", h.Reports.RemoveNote)
	block.POST("/courses", h.Reports.AddCourse)
	block.PATCH("/courses/:index", h.Reports.EditCourse)
	block.DELETE("/courses/:index", h.Reports.RemoveCourse)
}
