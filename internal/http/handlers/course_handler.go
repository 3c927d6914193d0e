package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"caddy/internal/http/middleware"
	"caddy/internal/modules/course"
)

// maxKMLBytes caps an uploaded KML file.
const maxKMLBytes = 5 << 20

type courseService interface {
	Create(ctx context.Context, in course.CreateInput) (*course.Course, error)
	Get(ctx context.Context, id int64) (*course.Course, error)
	Search(ctx context.Context, q string) ([]course.Course, error)
	ImportKML(ctx context.Context, r io.Reader) (*course.ImportResult, error)
}

type CourseHandler struct {
	courses courseService
	logger  *zerolog.Logger
}

func NewCourseHandler(svc courseService, logger *zerolog.Logger) *CourseHandler {
	return &CourseHandler{courses: svc, logger: logger}
}

// List handles GET /api/courses?q=.
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "courses": courses})
}

// Get handles GET /api/courses/:id.
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid course id")
		return
	}
	crs, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, crs)
}

// Create handles POST /api/courses.
func (h *CourseHandler) Create(c *gin.Context) {
	var in course.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	crs, err := h.courses.Create(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusCreated, crs)
}

// Import handles POST /api/courses/import with a multipart "kml_file".
func (h *CourseHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("kml_file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "No file provided")
		return
	}
	if fh.Filename == "" {
		writeError(c, http.StatusBadRequest, "Empty file name")
		return
	}
	if fh.Size > maxKMLBytes {
		writeError(c, http.StatusRequestEntityTooLarge, "kml file too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	defer f.Close()

	res, err := h.courses.ImportKML(c.Request.Context(), io.LimitReader(f, maxKMLBytes))
	if err != nil {
		if res != nil && len(res.Courses) > 0 {
			h.logger.Warn().Int("courses", len(res.Courses)).Str("request_id", middleware.GetRequestID(c)).Msg("kml import stopped part way")
		}
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "message": "KML file uploaded successfully", "details": res})
}
