// Package codec converts binary envelope fields to and from base64 text.
// Encoding is canonical (standard alphabet, no padding); decoding accepts
// both common dialects so independently written clients interoperate.
package codec
