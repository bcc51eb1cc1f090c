package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alkime/voicememo/internal/audio"
	"github.com/alkime/voicememo/internal/memo"
	"github.com/gin-gonic/gin"
)

type stateResponse struct {
	State          string               `json:"state"`
	ElapsedSeconds int                  `json:"elapsedSeconds"`
	Recordings     int                  `json:"recordings"`
	Playing        *memo.SavedRecording `json:"playing"`
	LastNotice     *memo.Notice         `json:"lastNotice"`
}

type recordingResponse struct {
	Index           int    `json:"index"`
	URI             string `json:"uri"`
	DurationSeconds int    `json:"durationSeconds"`
	Playing         bool   `json:"playing"`
}

func (s *Server) state() stateResponse {
	snap := s.recorder.Snapshot()

	resp := stateResponse{
		State:          snap.State.String(),
		ElapsedSeconds: snap.ElapsedSeconds,
		Recordings:     len(snap.Recordings),
		Playing:        snap.Playing,
	}

	if n, ok := s.notices.Last(); ok {
		resp.LastNotice = &n
	}

	return resp
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.state())
}

func (s *Server) handleRecordings(c *gin.Context) {
	snap := s.recorder.Snapshot()

	out := make([]recordingResponse, len(snap.Recordings))
	for i, rec := range snap.Recordings {
		out[i] = recordingResponse{
			Index:           i,
			URI:             rec.URI,
			DurationSeconds: rec.DurationSeconds,
			Playing:         snap.IsPlaying(i),
		}
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleStart(c *gin.Context) {
	if err := s.recorder.StartRecording(c.Request.Context()); err != nil {
		s.abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, s.state())
}

func (s *Server) handleStop(c *gin.Context) {
	rec, err := s.recorder.StopRecording(c.Request.Context())
	if err != nil {
		s.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Server) handlePlay(c *gin.Context) {
	index, ok := s.index(c)
	if !ok {
		return
	}

	if err := s.recorder.Play(c.Request.Context(), index); err != nil {
		s.abort(c, err)
		return
	}

	c.JSON(http.StatusAccepted, s.state())
}

func (s *Server) handleAudio(c *gin.Context) {
	index, ok := s.index(c)
	if !ok {
		return
	}

	recs := s.recorder.Snapshot().Recordings
	if index >= len(recs) {
		s.abort(c, memo.ErrRecordingNotFound)
		return
	}

	path, err := audio.PathFromURI(recs[index].URI)
	if err != nil {
		s.abort(c, err)
		return
	}

	c.Header("Cache-Control", "max-age="+strconv.Itoa(int(time.Hour.Seconds())))
	c.File(path)
}

func (s *Server) index(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid recording index"})
		return 0, false
	}

	return index, true
}

func (s *Server) abort(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, memo.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, memo.ErrAlreadyRecording),
		errors.Is(err, memo.ErrAlreadyPlaying),
		errors.Is(err, memo.ErrNotRecording):
		return http.StatusConflict
	case errors.Is(err, memo.ErrRecordingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
