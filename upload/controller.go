// Package upload implements the food photo upload-and-classify workflow.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/apex/log"

	"platefinder/gateway"
	"platefinder/models"
)

// Messages surfaced in a Failed outcome.
const (
	MsgNoFile        = "no file selected"
	MsgClassifyError = "Failed to process image"
)

// Classifier is the part of the directory client the workflow needs.
type Classifier interface {
	ClassifyImage(ctx context.Context, filename string, data []byte) (models.Classification, error)
}

// PreviewFunc renders a file into a preview.
type PreviewFunc func(data []byte) (models.Preview, error)

// File is a selected local file. Its content type is not validated.
type File struct {
	Name string
	Data []byte
}

// OpenFile reads path into a File.
func OpenFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("open %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Data: data}, nil
}

// Status is the classification lifecycle stage.
type Status int

const (
	Idle Status = iota
	Loading
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Outcome is the tagged result of a classification attempt. Result is set
// only when Succeeded; Failure only when Failed.
type Outcome struct {
	Status  Status
	Result  *models.Classification
	Failure *models.Failure
}

// View is the read-only projection consumed by presentation.
type View struct {
	File    *File
	Preview *models.Preview
	Outcome Outcome
}

// Controller owns one pending file, its preview and the classify lifecycle.
// Every asynchronous result is tagged with the selection it was derived from and
// dropped if the selection has changed by the time it arrives.
type Controller struct {
	classifier Classifier
	preview    PreviewFunc

	mu        sync.Mutex
	file      *File
	pview     *models.Preview
	outcome   Outcome
	selection uint64
	listeners []func(View)
}

// NewController returns an empty workflow. A nil preview uses EncodePreview.
func NewController(classifier Classifier, preview PreviewFunc) *Controller {
	if preview == nil {
		preview = EncodePreview
	}
	return &Controller{classifier: classifier, preview: preview}
}

// OnChange registers fn to receive the view after every transition.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// View returns the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// SelectFile replaces the pending file, clears the preview and resets the
// outcome to Idle. The preview is decoded in the background and applied only
// if f is still selected when decoding finishes.
func (c *Controller) SelectFile(f File) {
	var token uint64
	c.update(func() {
		c.selection++
		token = c.selection
		c.file = &f
		c.pview = nil
		c.outcome = Outcome{Status: Idle}
	})

	go func() {
		p, err := c.preview(f.Data)
		if err != nil {
			log.WithError(err).WithField("file", f.Name).Warn("preview failed")
			return
		}
		c.update(func() {
			if c.selection != token {
				return
			}
			c.pview = &p
		})
	}()
}

// Submit classifies the pending file. Without a file it fails with a
// validation error and makes no request. The outcome is Loading before the
// request is sent and exactly one of Succeeded or Failed once it settles,
// unless a newer selection has replaced the file in the meantime.
func (c *Controller) Submit(ctx context.Context) {
	var (
		token   uint64
		file    File
		proceed bool
	)
	c.update(func() {
		switch {
		case c.file == nil:
			c.outcome = Outcome{Status: Failed, Failure: &models.Failure{Kind: models.ValidationFailure, Message: MsgNoFile}}
		case c.outcome.Status == Loading:
			// already in flight for this selection
		default:
			token, file, proceed = c.selection, *c.file, true
			c.outcome = Outcome{Status: Loading}
		}
	})
	if !proceed {
		return
	}

	result, err := c.classifier.ClassifyImage(ctx, file.Name, file.Data)

	var next Outcome
	if err != nil {
		log.WithError(err).WithField("file", file.Name).Warn("classify image failed")
		next = Outcome{Status: Failed, Failure: classifyFailure(err)}
	} else {
		next = Outcome{Status: Succeeded, Result: &result}
	}

	c.update(func() {
		if c.selection != token {
			return
		}
		c.outcome = next
	})
}

func (c *Controller) update(mutate func()) {
	c.mu.Lock()
	mutate()
	view := c.viewLocked()
	listeners := append([]func(View){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(view)
	}
}

func (c *Controller) viewLocked() View {
	return View{File: c.file, Preview: c.pview, Outcome: c.outcome}
}

func classifyFailure(err error) *models.Failure {
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.Message
		if msg == "" {
			msg = MsgClassifyError
		}
		return &models.Failure{Kind: models.ServerFailure, Message: msg}
	}
	var netErr *gateway.NetworkError
	if errors.As(err, &netErr) {
		return &models.Failure{Kind: models.NetworkFailure, Message: MsgClassifyError}
	}
	return &models.Failure{Kind: models.ServerFailure, Message: MsgClassifyError}
}
