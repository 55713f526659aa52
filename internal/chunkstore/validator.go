package chunkstore

import (
	"vaultkeeper/internal/chunkid"
)

// ValidationResult is the pure output of the validator.
type ValidationResult struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) addError(msg string) {
	r.IsValid = false
	r.Errors = append(r.Errors, msg)
}

func (r *ValidationResult) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func ok() ValidationResult { return ValidationResult{IsValid: true} }

// ValidatorConfig parameterizes Validator.
type ValidatorConfig struct {
	VerifyHash             bool
	MinSize                int64
	MaxSize                int64
	AllowedHashAlgorithms  map[chunkid.HashAlgorithm]bool
}

// Validator implements the pure identifier/write/read checks that Store
// applies in Write and Read when a Validator is configured. It performs no I/O of its own; callers supply the
// bytes to verify.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator returns a Validator with the given configuration. A nil or
// empty AllowedHashAlgorithms map means "allow any algorithm this package
// knows how to hash with."
func NewValidator(cfg ValidatorConfig) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) algorithmAllowed(alg chunkid.HashAlgorithm) bool {
	if len(v.cfg.AllowedHashAlgorithms) == 0 {
		_, known := chunkid.CanonicalHexLength(alg)
		return known
	}
	return v.cfg.AllowedHashAlgorithms[alg]
}

// ValidateIdentifier checks id and meta.HashAlgorithm in isolation.
func (v *Validator) ValidateIdentifier(id chunkid.ID, meta chunkid.Metadata) ValidationResult {
	res := ok()

	if id == "" {
		res.addError("identifier is empty")
		return res
	}
	if !chunkid.IsLowerHex(string(id)) {
		res.addError("identifier is not lowercase hex")
		return res
	}

	if n, known := chunkid.CanonicalHexLength(meta.HashAlgorithm); known && len(id) != n {
		res.addWarning("identifier length does not match canonical length for hash algorithm")
	}

	if meta.HashAlgorithm != "" && !v.algorithmAllowed(meta.HashAlgorithm) {
		res.addError("hash algorithm is not in the allowed set")
	}

	return res
}

// ValidateWrite checks a candidate write of data under id with metadata
// meta.
func (v *Validator) ValidateWrite(id chunkid.ID, data []byte, meta chunkid.Metadata) ValidationResult {
	res := v.ValidateIdentifier(id, meta)

	size := int64(len(data))
	if size < v.cfg.MinSize || (v.cfg.MaxSize > 0 && size > v.cfg.MaxSize) {
		res.addError("data size is outside the allowed range")
	}

	if v.cfg.VerifyHash && meta.HashAlgorithm != "" {
		sum, err := chunkid.Hash(data, meta.HashAlgorithm)
		if err != nil {
			res.addError("could not compute hash: " + err.Error())
		} else if sum != string(id) {
			res.addError("HashMismatch: computed hash does not equal identifier")
		}
	}

	if meta.Size != 0 && meta.Size != size {
		res.addWarning("metadata size does not match payload size")
	}

	return res
}

// ValidateRead checks data read back for id against meta.
func (v *Validator) ValidateRead(id chunkid.ID, data []byte, meta chunkid.Metadata) ValidationResult {
	res := v.ValidateIdentifier(id, meta)

	if v.cfg.VerifyHash && meta.HashAlgorithm != "" {
		sum, err := chunkid.Hash(data, meta.HashAlgorithm)
		if err != nil {
			res.addError("could not compute hash: " + err.Error())
		} else if sum != string(id) {
			res.addError("HashMismatch: computed hash does not equal identifier")
			res.addError("CorruptedData: payload does not match its recorded hash")
		}
	}

	if meta.Size != 0 && meta.Size != int64(len(data)) {
		res.addWarning("metadata size does not match payload size")
	}

	return res
}
