package gateway_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/deskshell/internal/gateway"
	"github.com/slok/deskshell/internal/gateway/gatewaymock"
	"github.com/slok/deskshell/internal/model"
)

func TestHandler(t *testing.T) {
	tests := map[string]struct {
		mock    func(m *gatewaymock.MockUIService)
		method  string
		op      string
		body    string
		expCode int
		expBody string
	}{
		"get-storage-root should return the path.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("StorageRoot", mock.Anything).Once().Return("/data", nil)
			},
			op:      gateway.OpGetStorageRoot,
			expCode: 200,
			expBody: `{"path":"/data"}`,
		},

		"fetch-status should return the backend payload.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("FetchStatus", mock.Anything).Once().Return(json.RawMessage(`{"status":"ok"}`), nil)
			},
			op:      gateway.OpFetchStatus,
			expCode: 200,
			expBody: `{"status":"ok"}`,
		},

		"list-files should return the entries.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("ListFiles", mock.Anything, "/data/workspace").Once().Return([]model.FileEntry{{Name: "test_data.csv", Size: 42}}, nil)
			},
			op:      gateway.OpListFiles,
			body:    `{"directory":"/data/workspace"}`,
			expCode: 200,
			expBody: `[{"name":"test_data.csv","size":42}]`,
		},

		"list-files on an unreadable directory should fail with 500.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("ListFiles", mock.Anything, "/nope").Once().Return(nil, fmt.Errorf("could not open: %w", model.ErrDirectoryUnreadable))
			},
			op:      gateway.OpListFiles,
			body:    `{"directory":"/nope"}`,
			expCode: 500,
			expBody: `{"error":"could not open: directory unreadable"}`,
		},

		"upload-file should return the result.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("UploadFile", mock.Anything, gateway.UploadRequest{FilePath: "/tmp/x.csv", Destination: "/data/workspace"}).Once().
					Return(&gateway.UploadResult{Success: true, Path: "/data/workspace/x.csv"}, nil)
			},
			op:      gateway.OpUploadFile,
			body:    `{"filePath":"/tmp/x.csv","destination":"/data/workspace"}`,
			expCode: 200,
			expBody: `{"success":true,"path":"/data/workspace/x.csv"}`,
		},

		"upload-file collisions should fail with 409.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("UploadFile", mock.Anything, mock.Anything).Once().Return(nil, fmt.Errorf("x: %w", model.ErrAlreadyExists))
			},
			op:      gateway.OpUploadFile,
			body:    `{"filePath":"/tmp/x.csv","destination":"/data/workspace"}`,
			expCode: 409,
			expBody: `{"error":"x: already exists"}`,
		},

		"select-file cancelled should return a null path.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("SelectFile", mock.Anything).Once().Return(nil, nil)
			},
			op:      gateway.OpSelectFile,
			expCode: 200,
			expBody: `{"path":null}`,
		},

		"select-file should return the selected path.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("SelectFile", mock.Anything).Once().Return(ptr("/tmp/x.csv"), nil)
			},
			op:      gateway.OpSelectFile,
			expCode: 200,
			expBody: `{"path":"/tmp/x.csv"}`,
		},

		"get-desktop-path should return the path.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("DesktopPath", mock.Anything).Once().Return("/home/user/Desktop", nil)
			},
			op:      gateway.OpGetDesktopPath,
			expCode: 200,
			expBody: `{"path":"/home/user/Desktop"}`,
		},

		"get-data-path should return the path.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("DataPath", mock.Anything).Once().Return("/data/workspace", nil)
			},
			op:      gateway.OpGetDataPath,
			expCode: 200,
			expBody: `{"path":"/data/workspace"}`,
		},

		"check-file-exists should return the result.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("CheckFileExists", mock.Anything, gateway.CheckRequest{FileName: "x.csv", Destination: "/data/workspace"}).Once().Return(true, nil)
			},
			op:      gateway.OpCheckFileExists,
			body:    `{"fileName":"x.csv","destination":"/data/workspace"}`,
			expCode: 200,
			expBody: `{"exists":true}`,
		},

		"read-file should return the content.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("ReadFile", mock.Anything, "x.csv").Once().Return("a,b\n", nil)
			},
			op:      gateway.OpReadFile,
			body:    `{"fileName":"x.csv"}`,
			expCode: 200,
			expBody: `{"content":"a,b\n"}`,
		},

		"read-file missing should fail with 404.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("ReadFile", mock.Anything, "x.csv").Once().Return("", fmt.Errorf("x: %w", model.ErrFileNotFound))
			},
			op:      gateway.OpReadFile,
			body:    `{"fileName":"x.csv"}`,
			expCode: 404,
			expBody: `{"error":"x: file not found"}`,
		},

		"read-file escaping should fail with 400.": {
			mock: func(m *gatewaymock.MockUIService) {
				m.On("ReadFile", mock.Anything, "../x").Once().Return("", fmt.Errorf("x: %w", model.ErrNotValid))
			},
			op:      gateway.OpReadFile,
			body:    `{"fileName":"../x"}`,
			expCode: 400,
			expBody: `{"error":"x: not valid"}`,
		},

		"A malformed body should fail with 400.": {
			mock:    func(m *gatewaymock.MockUIService) {},
			op:      gateway.OpReadFile,
			body:    `{"fileName":`,
			expCode: 400,
		},

		"Unknown body fields should fail with 400.": {
			mock:    func(m *gatewaymock.MockUIService) {},
			op:      gateway.OpListFiles,
			body:    `{"dir":"/data"}`,
			expCode: 400,
		},

		"Unknown operations should not be found.": {
			mock:    func(m *gatewaymock.MockUIService) {},
			op:      "delete-everything",
			expCode: 404,
		},

		"Non POST methods should not be allowed.": {
			mock:    func(m *gatewaymock.MockUIService) {},
			method:  http.MethodGet,
			op:      gateway.OpGetDataPath,
			expCode: 405,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := &gatewaymock.MockUIService{}
			test.mock(m)

			method := test.method
			if method == "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, "/ipc/"+test.op, strings.NewReader(test.body))
			rec := httptest.NewRecorder()

			gateway.NewHandler(m, nil).ServeHTTP(rec, req)

			require.Equal(test.expCode, rec.Code)
			if test.expBody != "" {
				assert.JSONEq(test.expBody, rec.Body.String())
			}
			_, err := uuid.Parse(rec.Header().Get(gateway.RequestIDHeader))
			assert.NoError(err)
			m.AssertExpectations(t)
		})
	}
}

func TestHandlerRequestIDIsEchoed(t *testing.T) {
	m := &gatewaymock.MockUIService{}
	m.On("DataPath", mock.Anything).Once().Return("/data/workspace", nil)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/ipc/"+gateway.OpGetDataPath, nil)
	req.Header.Set(gateway.RequestIDHeader, id)
	rec := httptest.NewRecorder()

	gateway.NewHandler(m, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, rec.Header().Get(gateway.RequestIDHeader))
}

func TestServerServeAndShutdown(t *testing.T) {
	require := require.New(t)

	m := &gatewaymock.MockUIService{}
	m.On("StorageRoot", mock.Anything).Once().Return("/data", nil)

	srv, err := gateway.NewServer(gateway.ServerConfig{
		ListenAddr: "127.0.0.1:0",
		Handler:    gateway.NewHandler(m, nil),
	})
	require.NoError(err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	errC := make(chan error, 1)
	go func() { errC <- srv.Serve(l) }()

	resp, err := http.Post("http://"+l.Addr().String()+"/ipc/"+gateway.OpGetStorageRoot, "application/json", nil)
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(err)
	require.JSONEq(`{"path":"/data"}`, string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(srv.Shutdown(ctx))
	require.NoError(<-errC)
}

func TestStatusCode(t *testing.T) {
	tests := map[string]struct {
		err     error
		expCode int
	}{
		"Not valid should be a bad request.":        {err: model.ErrNotValid, expCode: 400},
		"File not found should be not found.":       {err: model.ErrFileNotFound, expCode: 404},
		"Not found should be not found.":            {err: model.ErrNotFound, expCode: 404},
		"Already exists should be a conflict.":      {err: model.ErrAlreadyExists, expCode: 409},
		"Copy failed should be an internal error.":  {err: model.ErrCopyFailed, expCode: 500},
		"Read failed should be an internal error.":  {err: model.ErrReadFailed, expCode: 500},
		"Wrapped errors should be classified.":      {err: fmt.Errorf("a: %w", model.ErrNotValid), expCode: 400},
		"Unknown errors should be internal errors.": {err: fmt.Errorf("something"), expCode: 500},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expCode, gateway.StatusCode(test.err))
		})
	}
}
