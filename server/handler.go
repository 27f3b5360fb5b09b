package server

import (
	"crypto/subtle"
	"errors"
	"image"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/krau/scenelens/classifier"
	"github.com/krau/scenelens/config"
	"github.com/krau/scenelens/frames"
)

var (
	errUnauthorized = errors.New("unauthorized")
	errBusy         = errors.New("a frame is already being classified")
)

// Classifier is the part of the pipeline the server drives.
type Classifier interface {
	Classify(img image.Image, policy classifier.Policy) (classifier.Result, error)
}

// Server feeds uploaded frames to a Classifier one at a time.
type Server struct {
	pipeline  Classifier
	token     string
	policy    string
	threshold float32
	drop      bool
	slot      chan struct{}
}

type Response struct {
	classifier.Result
	Text string `json:"text"`
}

func New(p Classifier, cfg config.Config) *Server {
	return &Server{
		pipeline:  p,
		token:     cfg.Token,
		policy:    cfg.Policy,
		threshold: cfg.Threshold,
		drop:      cfg.FramePolicy == "drop",
		slot:      make(chan struct{}, 1),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/classify", s.ClassifyHandler)
	r.GET("/health", HealthHandler)
	return r
}

func (s *Server) authenticate(c *gin.Context) error {
	auth := c.GetHeader("Authorization")

	if s.token == "" {
		return nil
	}
	providedToken := ""
	if len(auth) > 7 && auth[:7] == "Bearer " {
		providedToken = auth[7:]
	}
	if subtle.ConstantTimeCompare([]byte(providedToken), []byte(s.token)) != 1 {
		return errUnauthorized
	}

	return nil
}

// acquire takes the single inference slot. With the drop policy a busy slot fails
// immediately with errBusy, otherwise it waits until the slot frees or the request
// goes away.
func (s *Server) acquire(c *gin.Context) error {
	if s.drop {
		select {
		case s.slot <- struct{}{}:
			return nil
		default:
			return errBusy
		}
	}
	select {
	case s.slot <- struct{}{}:
		return nil
	case <-c.Request.Context().Done():
		return c.Request.Context().Err()
	}
}

func (s *Server) release() { <-s.slot }

func (s *Server) ClassifyHandler(c *gin.Context) {
	if err := s.authenticate(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	policy, err := s.policyFor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	img, err := frames.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot decode image"})
		return
	}

	if err := s.acquire(c); err != nil {
		if errors.Is(err, errBusy) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "request ended while waiting for the model"})
		}
		return
	}
	res, err := s.pipeline.Classify(img, policy)
	s.release()
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, classifier.ErrInvalidImage):
			status = http.StatusBadRequest
		case errors.Is(err, classifier.ErrUseAfterClose):
			status = http.StatusServiceUnavailable
		default:
			slog.Error("Classification failed", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Result: res, Text: res.String()})
}

func (s *Server) policyFor(c *gin.Context) (classifier.Policy, error) {
	name := c.DefaultQuery("policy", s.policy)
	threshold := s.threshold
	if raw := c.Query("min"); raw != "" {
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, errors.New("min must be a number")
		}
		threshold = float32(v)
	}
	return classifier.ParsePolicy(name, threshold)
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
