package main

import _ "embed"

// defaultKnowledgeJSON is the built-in crop dataset, the last-resort
// knowledge source when neither Postgres nor the artifact file is
// available. Same schema as the external artifact.
//
//go:embed data/crop_knowledge.json
var defaultKnowledgeJSON []byte
