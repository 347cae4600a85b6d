package encryption_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"pgregory.net/rapid"

	"github.com/idelchi/minizip/internal/encryption"
)

func newContext(t *testing.T, password string, alg encryption.Algorithm) *encryption.Context {
	t.Helper()

	ctx := encryption.New()
	t.Cleanup(ctx.Clear)

	if err := ctx.SetPassword([]byte(password), alg); err != nil {
		t.Fatalf("SetPassword(%q, %s): %v", password, alg, err)
	}

	return ctx
}

func TestHelloWorldScenario(t *testing.T) {
	t.Parallel()

	encoded, err := newContext(t, "secret", encryption.HMACSHA256).Encode([]byte("hello world"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := newContext(t, "secret", encryption.HMACSHA256).Decode(encoded)
	if err != nil {
		t.Fatalf("Decode with correct password: %v", err)
	}

	if string(decoded) != "hello world" {
		t.Errorf("Decode = %q, want %q", decoded, "hello world")
	}

	if out, err := newContext(t, "wrong", encryption.HMACSHA256).Decode(encoded); !errors.Is(err, encryption.ErrWrongPassword) {
		t.Errorf("Decode with wrong password = (%q, %v), want ErrWrongPassword", out, err)
	}

	if out, err := encryption.New().Decode(encoded); !errors.Is(err, encryption.ErrPasswordRequired) {
		t.Errorf("Decode without password = (%q, %v), want ErrPasswordRequired", out, err)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	large := make([]byte, 100*1024+7)
	for i := range large {
		large[i] = byte(i * 31)
	}

	inputs := map[string][]byte{
		"empty":  {},
		"single": {0x42},
		"text":   []byte("The quick brown fox jumps over the lazy dog"),
		"large":  large,
	}

	for _, alg := range encryption.Algorithms() {
		for name, input := range inputs {
			t.Run(fmt.Sprintf("%s/%s", alg, name), func(t *testing.T) {
				t.Parallel()

				ctx := newContext(t, "correct horse battery staple", alg)

				encoded, err := ctx.Encode(input)
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}

				if !encryption.HasHeader(encoded) {
					t.Fatalf("encoded member has no header")
				}

				if len(input) > 8 && bytes.Contains(encoded, input) {
					t.Errorf("plaintext visible in encoded member")
				}

				decoded, err := ctx.Decode(encoded)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}

				if !bytes.Equal(decoded, input) {
					t.Errorf("round trip mismatch: got %d bytes, want %d", len(decoded), len(input))
				}
			})
		}
	}
}

func TestPlainPassthrough(t *testing.T) {
	t.Parallel()

	ctx := encryption.New()

	for _, input := range [][]byte{{}, []byte("plain bytes"), {0, 1, 2, 3}} {
		encoded, err := ctx.Encode(input)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		if !bytes.Equal(encoded, input) {
			t.Errorf("Encode without password changed %q to %q", input, encoded)
		}

		decoded, err := newContext(t, "irrelevant", encryption.XOR).Decode(encoded)
		if err != nil {
			t.Fatalf("Decode plain member with password set: %v", err)
		}

		if !bytes.Equal(decoded, input) {
			t.Errorf("Decode changed plain member %q to %q", input, decoded)
		}
	}
}

func TestVerificationTagCorruption(t *testing.T) {
	t.Parallel()

	const (
		prefix  = 5 // magic + algorithm id
		tagSize = 32
	)

	for _, alg := range encryption.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			t.Parallel()

			ctx := newContext(t, "secret", alg)

			encoded, err := ctx.Encode([]byte("payload that must not leak"))
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			salt := 0
			if alg == encryption.HMACSHA256 || alg == encryption.CustomHash {
				salt = 16
			}

			for i := prefix + salt; i < prefix+salt+tagSize; i++ {
				corrupted := bytes.Clone(encoded)
				corrupted[i] ^= 0x01

				if out, err := ctx.Decode(corrupted); !errors.Is(err, encryption.ErrWrongPassword) {
					t.Fatalf("flipped tag byte %d: Decode = (%q, %v), want ErrWrongPassword", i, out, err)
				}
			}
		})
	}
}

func TestMalformedHeaders(t *testing.T) {
	t.Parallel()

	ctx := newContext(t, "secret", encryption.XOR)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "magic only", data: []byte("MZC1"), want: encryption.ErrTruncatedHeader},
		{name: "unknown id", data: append([]byte("MZC1\x09"), make([]byte, 40)...), want: encryption.ErrUnknownAlgorithm},
		{name: "zero id", data: append([]byte("MZC1\x00"), make([]byte, 40)...), want: encryption.ErrUnknownAlgorithm},
		{name: "short tag", data: append([]byte("MZC1\x01"), make([]byte, 31)...), want: encryption.ErrTruncatedHeader},
		{name: "short salt", data: append([]byte("MZC1\x02"), make([]byte, 10)...), want: encryption.ErrTruncatedHeader},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ctx.Decode(tc.data); !errors.Is(err, tc.want) {
				t.Errorf("Decode error = %v, want %v", err, tc.want)
			}

			if _, err := ctx.NewReader(bytes.NewReader(tc.data)); !errors.Is(err, tc.want) {
				t.Errorf("NewReader error = %v, want %v", err, tc.want)
			}

			if !encryption.IsDecodeError(tc.want) {
				t.Errorf("IsDecodeError(%v) = false", tc.want)
			}
		})
	}
}

func TestSaltMakesEncodingsDiffer(t *testing.T) {
	t.Parallel()

	data := []byte("identical plaintext")

	for _, alg := range encryption.Algorithms() {
		ctx := newContext(t, "secret", alg)

		first, err := ctx.Encode(data)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		second, err := ctx.Encode(data)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		salted := alg == encryption.HMACSHA256 || alg == encryption.CustomHash
		if salted == bytes.Equal(first, second) {
			t.Errorf("%s: repeated encodings equal = %v, want %v", alg, bytes.Equal(first, second), !salted)
		}
	}
}

func TestStreamingMatchesBytes(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("streamed member contents "), 5000)

	for _, alg := range encryption.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			t.Parallel()

			ctx := newContext(t, "stream", alg)

			var buf bytes.Buffer

			w, err := ctx.NewWriter(&buf)
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}

			// Uneven writes exercise keystream position tracking.
			for rest := data; len(rest) > 0; {
				n := min(len(rest), 777)
				if _, err := w.Write(rest[:n]); err != nil {
					t.Fatalf("Write: %v", err)
				}

				rest = rest[n:]
			}

			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			decoded, err := ctx.Decode(buf.Bytes())
			if err != nil {
				t.Fatalf("Decode of streamed member: %v", err)
			}

			if !bytes.Equal(decoded, data) {
				t.Fatalf("Decode of streamed member differs from input")
			}

			encoded, err := ctx.Encode(data)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			r, err := ctx.NewReader(bytes.NewReader(encoded))
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}

			streamed, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("reading decoded stream: %v", err)
			}

			if !bytes.Equal(streamed, data) {
				t.Errorf("NewReader output differs from input")
			}
		})
	}
}

func TestNewReaderWrongPassword(t *testing.T) {
	t.Parallel()

	encoded, err := newContext(t, "right", encryption.AESLike).Encode([]byte("data"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if _, err := newContext(t, "left", encryption.AESLike).NewReader(bytes.NewReader(encoded)); !errors.Is(err, encryption.ErrWrongPassword) {
		t.Errorf("NewReader error = %v, want ErrWrongPassword", err)
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	for _, alg := range encryption.Algorithms() {
		encoded, err := newContext(t, "secret", alg).Encode([]byte("x"))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		got, encrypted := encryption.Inspect(encoded[:encryption.PrefixSize])
		if !encrypted || got != alg {
			t.Errorf("Inspect = (%s, %v), want (%s, true)", got, encrypted, alg)
		}
	}

	if _, encrypted := encryption.Inspect([]byte("PK\x03\x04")); encrypted {
		t.Errorf("Inspect reported plain data as encrypted")
	}
}

func TestCodecProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		alg := rapid.SampledFrom(encryption.Algorithms()).Draw(t, "algorithm")
		data := rapid.SliceOf(rapid.Byte()).Draw(t, "data")
		passwordA := rapid.StringN(1, 32, -1).Draw(t, "passwordA")
		passwordB := rapid.StringN(1, 32, -1).Filter(func(s string) bool { return s != passwordA }).Draw(t, "passwordB")

		ctxA := encryption.New()
		defer ctxA.Clear()

		if err := ctxA.SetPassword([]byte(passwordA), alg); err != nil {
			t.Fatalf("SetPassword: %v", err)
		}

		encoded, err := ctxA.Encode(data)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		decoded, err := ctxA.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}

		if !bytes.Equal(decoded, data) {
			t.Fatalf("round trip mismatch")
		}

		ctxB := encryption.New()
		defer ctxB.Clear()

		if err := ctxB.SetPassword([]byte(passwordB), alg); err != nil {
			t.Fatalf("SetPassword: %v", err)
		}

		if out, err := ctxB.Decode(encoded); !errors.Is(err, encryption.ErrWrongPassword) || out != nil {
			t.Fatalf("Decode with other password = (%v, %v), want (nil, ErrWrongPassword)", out, err)
		}
	})
}
