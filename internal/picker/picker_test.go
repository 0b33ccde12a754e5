package picker_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ncruces/zenity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/deskshell/internal/picker"
)

func TestOSPickerSelectFile(t *testing.T) {
	tests := map[string]struct {
		startDir  string
		ctx       func() context.Context
		path      string
		dialogErr error
		expOpts   int
		expCalled bool
		expPath   string
		expErr    bool
	}{
		"A selected file should return its path.": {
			startDir:  "/home/user/Desktop",
			path:      "/home/user/data.csv",
			expOpts:   3,
			expCalled: true,
			expPath:   "/home/user/data.csv",
		},

		"Without a start directory the dialog should open in its default location.": {
			path:      "/home/user/data.csv\n",
			expOpts:   2,
			expCalled: true,
			expPath:   "/home/user/data.csv",
		},

		"A cancelled dialog should return an empty path.": {
			startDir:  "/home/user/Desktop",
			dialogErr: zenity.ErrCanceled,
			expOpts:   3,
			expCalled: true,
			expPath:   "",
		},

		"A wrapped cancel should return an empty path.": {
			dialogErr: fmt.Errorf("dialog: %w", zenity.ErrCanceled),
			expOpts:   2,
			expCalled: true,
			expPath:   "",
		},

		"A dialog error should fail.": {
			dialogErr: fmt.Errorf("no display"),
			expOpts:   2,
			expCalled: true,
			expErr:    true,
		},

		"A cancelled context should fail without opening the dialog.": {
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			called := false
			gotOpts := 0
			p, err := picker.NewOSPicker(picker.OSPickerConfig{
				StartDir: test.startDir,
				Dialog: func(opts ...zenity.Option) (string, error) {
					called = true
					gotOpts = len(opts)
					return test.path, test.dialogErr
				},
			})
			require.NoError(err)

			ctx := context.Background()
			if test.ctx != nil {
				ctx = test.ctx()
			}

			gotPath, err := p.SelectFile(ctx)
			assert.Equal(test.expCalled, called)
			assert.Equal(test.expOpts, gotOpts)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(test.expPath, gotPath)
		})
	}
}
