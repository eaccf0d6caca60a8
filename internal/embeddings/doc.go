// Package embeddings turns text into fixed-length vectors.
//
// Three providers implement Provider:
//
//   - FastEmbedProvider runs an ONNX model in-process (requires CGO and
//     the ONNX runtime shared library, located through ONNX_PATH).
//   - TEIProvider calls a HuggingFace text-embeddings-inference server.
//   - OpenAIProvider calls the OpenAI embeddings API.
//
// The same provider, with the same model, must encode both the corpus and
// every query. ModelID identifies the model so callers can enforce that.
package embeddings
