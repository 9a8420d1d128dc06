package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"courtview/internal/storage"
	storeMocks "courtview/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAssetService_Open(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		rawPath    string
		setupMocks func(mStore *storeMocks.MockStorage)
		wantErr    error
		wantType   string
		wantBody   string
	}{
		{
			name:    "javascript file",
			rawPath: "js/tennis_court.js",
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Get", ctx, "js/tennis_court.js").Return(
					io.NopCloser(strings.NewReader("init();")),
					storage.ObjectInfo{Key: "js/tennis_court.js", Size: 7},
					nil,
				)
			},
			wantType: "javascript",
			wantBody: "init();",
		},
		{
			name:    "stylesheet keeps extension type over stored type",
			rawPath: "css/style.css",
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Get", ctx, "css/style.css").Return(
					io.NopCloser(strings.NewReader("body{}")),
					storage.ObjectInfo{Key: "css/style.css", ContentType: "binary/octet-stream"},
					nil,
				)
			},
			wantType: "text/css",
			wantBody: "body{}",
		},
		{
			name:    "unknown extension falls back to stored type",
			rawPath: "data/court.unknownext",
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Get", ctx, "data/court.unknownext").Return(
					io.NopCloser(strings.NewReader("x")),
					storage.ObjectInfo{Key: "data/court.unknownext", ContentType: "application/x-court"},
					nil,
				)
			},
			wantType: "application/x-court",
			wantBody: "x",
		},
		{
			name:    "no extension",
			rawPath: "LICENSE",
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Get", ctx, "LICENSE").Return(
					io.NopCloser(strings.NewReader("MIT")),
					storage.ObjectInfo{Key: "LICENSE"},
					nil,
				)
			},
			wantType: "application/octet-stream",
			wantBody: "MIT",
		},
		{
			name:       "traversal never reaches the store",
			rawPath:    "../../etc/passwd",
			setupMocks: func(mStore *storeMocks.MockStorage) {},
			wantErr:    ErrNotFound,
		},
		{
			name:    "missing file",
			rawPath: "doesnotexist.js",
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Get", ctx, "doesnotexist.js").
					Return(nil, storage.ObjectInfo{}, fmt.Errorf("doesnotexist.js: %w", storage.ErrNotFound))
			},
			wantErr: ErrNotFound,
		},
		{
			name:    "unreadable file",
			rawPath: "js/locked.js",
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Get", ctx, "js/locked.js").
					Return(nil, storage.ObjectInfo{}, fmt.Errorf("js/locked.js: %w", storage.ErrUnreadable))
			},
			wantErr: ErrUnreadable,
		},
		{
			name:    "unexpected store error",
			rawPath: "js/app.js",
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Get", ctx, "js/app.js").
					Return(nil, storage.ObjectInfo{}, errors.New("disk on fire"))
			},
			wantErr: ErrUnreadable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			tt.setupMocks(mStore)

			svc := NewAssetService(mStore)
			asset, err := svc.Open(ctx, tt.rawPath)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, asset)
			} else {
				require.NoError(t, err)
				defer asset.Body.Close()
				assert.Contains(t, asset.Info.ContentType, tt.wantType)
				body, err := io.ReadAll(asset.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
			mStore.AssertExpectations(t)
			if tt.rawPath == "../../etc/passwd" {
				mStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAssetService_Ready(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	svc := NewAssetService(mStore)

	mStore.On("Ping", ctx).Return(nil).Once()
	assert.NoError(t, svc.Ready(ctx))

	mStore.On("Ping", ctx).Return(errors.New("gone")).Once()
	assert.Error(t, svc.Ready(ctx))

	mStore.AssertExpectations(t)
}
