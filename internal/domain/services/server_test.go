package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReloader struct {
	mock.Mock
}

func (m *MockReloader) Start(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockReloader) Stop() error {
	return m.Called().Error(0)
}

type MockBrowserLauncher struct {
	mock.Mock
}

func (m *MockBrowserLauncher) Launch(url string, noOpen bool) error {
	return m.Called(url, noOpen).Error(0)
}

func (m *MockBrowserLauncher) Detect() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// addrServer reports the port it bound
type addrServer struct {
	*MockHTTPServer
	addr string
}

func (a addrServer) Addr() string { return a.addr }

func TestPreviewService_Serve(t *testing.T) {
	reloader := &MockReloader{}
	server := &MockHTTPServer{}
	browser := &MockBrowserLauncher{}

	reloader.On("Start", mock.Anything, "deck.yaml").Return(nil)
	reloader.On("Stop").Return(nil)
	server.On("Start", mock.Anything, 3000, "localhost").Return(nil)
	server.On("IsRunning").Return(true)
	server.On("Stop", mock.Anything).Return(nil)
	launched := make(chan struct{})
	browser.On("Launch", "http://localhost:3000", false).Return(nil).Run(func(mock.Arguments) { close(launched) })

	service := NewPreviewService(reloader, server, browser, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- service.Serve(ctx, "deck.yaml", 3000, "localhost", true) }()

	select {
	case <-launched:
	case <-time.After(2 * time.Second):
		t.Fatal("browser was not launched")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	reloader.AssertExpectations(t)
	server.AssertExpectations(t)
	browser.AssertExpectations(t)
}

func TestPreviewService_Errors(t *testing.T) {
	t.Run("reload start fails", func(t *testing.T) {
		reloader := &MockReloader{}
		server := &MockHTTPServer{}
		reloader.On("Start", mock.Anything, "deck.yaml").Return(errors.New("invalid deck"))

		service := NewPreviewService(reloader, server, nil, 0, nil)
		err := service.Serve(context.Background(), "deck.yaml", 3000, "localhost", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "starting live reload")
		server.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("server start fails", func(t *testing.T) {
		reloader := &MockReloader{}
		server := &MockHTTPServer{}
		reloader.On("Start", mock.Anything, "deck.yaml").Return(nil)
		reloader.On("Stop").Return(nil)
		server.On("Start", mock.Anything, 3000, "localhost").Return(errors.New("address already in use"))

		service := NewPreviewService(reloader, server, nil, 0, nil)
		err := service.Serve(context.Background(), "deck.yaml", 3000, "localhost", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "address already in use")
		reloader.AssertCalled(t, "Stop")

		// a failed start leaves the service reusable
		assert.NoError(t, service.Stop(context.Background()))
	})

	t.Run("browser failure is not fatal", func(t *testing.T) {
		reloader := &MockReloader{}
		server := &MockHTTPServer{}
		browser := &MockBrowserLauncher{}
		reloader.On("Start", mock.Anything, "deck.yaml").Return(nil)
		reloader.On("Stop").Return(nil)
		server.On("Start", mock.Anything, 8080, "0.0.0.0").Return(nil)
		server.On("IsRunning").Return(false)
		browser.On("Launch", "http://localhost:8080", true).Return(errors.New("no browsers"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		service := NewPreviewService(reloader, server, browser, 0, nil)
		assert.NoError(t, service.Serve(ctx, "deck.yaml", 8080, "0.0.0.0", false))
		browser.AssertExpectations(t)
	})
}

func TestPreviewService_StopWhenIdle(t *testing.T) {
	service := NewPreviewService(&MockReloader{}, &MockHTTPServer{}, nil, 0, nil)
	assert.NoError(t, service.Stop(context.Background()))
}

func TestPreviewURL(t *testing.T) {
	tests := []struct {
		name string
		addr string
		host string
		port int
		want string
	}{
		{name: "configured", host: "localhost", port: 3000, want: "http://localhost:3000"},
		{name: "wildcard ipv4", host: "0.0.0.0", port: 3000, want: "http://localhost:3000"},
		{name: "wildcard ipv6", host: "::", port: 3000, want: "http://localhost:3000"},
		{name: "ipv6 literal", host: "::1", port: 3000, want: "http://[::1]:3000"},
		{name: "bound port", addr: "127.0.0.1:49152", host: "127.0.0.1", port: 0, want: "http://127.0.0.1:49152"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := addrServer{MockHTTPServer: &MockHTTPServer{}, addr: tt.addr}
			assert.Equal(t, tt.want, PreviewURL(server, tt.host, tt.port))
		})
	}
}
