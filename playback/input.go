// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"fmt"
	"os"
)

// Getter downloads a URL. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Input is an audio clip that has not been loaded yet.
type Input interface {
	Load(ctx context.Context, getter Getter) ([]byte, error)
	String() string
}

// FileInput reads a clip from disk.
type FileInput string

func (f FileInput) Load(_ context.Context, _ Getter) ([]byte, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("read clip: %w", err)
	}
	return data, nil
}

func (f FileInput) String() string { return "file:" + string(f) }

// BlobInput is a clip already held in memory, such as an upload or a TTS
// response.
type BlobInput []byte

func (b BlobInput) Load(context.Context, Getter) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrEmptyInput
	}
	return b, nil
}

func (b BlobInput) String() string { return fmt.Sprintf("blob:%d bytes", len(b)) }

// URLInput fetches a clip over HTTP.
type URLInput string

func (u URLInput) Load(ctx context.Context, getter Getter) ([]byte, error) {
	return getter.Get(ctx, string(u))
}

func (u URLInput) String() string { return string(u) }
