package handler

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"

	"pdf-viewer/internal/domain"
)

// Mock logger used by handler package tests.
type MockHandlerLogger struct{}

func NewMockHandlerLogger() domain.Logger {
	return &MockHandlerLogger{}
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{})             {}
func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockHandlerLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockHandlerLogger) Warn(msg string, fields ...interface{})             {}

var testPageColor = color.RGBA{R: 0xc0, G: 0x10, B: 0x10, A: 0xff}

type mockDocument struct{ pages int }

func (d *mockDocument) PageCount() int { return d.pages }

func (d *mockDocument) RenderPage(index int, dst *image.RGBA, mode domain.RenderMode) error {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(testPageColor), image.Point{}, draw.Src)
	return nil
}

func (d *mockDocument) Close() error { return nil }

type mockRenderer struct{}

func (mockRenderer) Open(path string) (domain.Document, error) {
	switch path {
	case "three.pdf":
		return &mockDocument{pages: 3}, nil
	case "empty.pdf":
		return &mockDocument{}, nil
	}
	return nil, errors.New("cannot open " + path)
}

type mockFetcher struct{}

func (mockFetcher) Fetch(ctx context.Context, source string) (*domain.LocalFile, error) {
	if source == "http://unreachable.example/doc.pdf" {
		return nil, &domain.FetchError{Source: source, Err: errors.New("connection refused")}
	}
	return &domain.LocalFile{Path: source}, nil
}
