package magick

// validate checks the arguments every call of op needs.
func validate(op string, o *Options) error {
	if o == nil {
		return argumentError(op, requiresMessage(op))
	}
	if o.SrcData == nil {
		return argumentError(op, bufferMessage(op, "srcData"))
	}
	if op == OpComposite && o.CompositeData == nil {
		return argumentError(op, bufferMessage(op, "compositeData"))
	}
	return nil
}

// validateAsync is validate for the asynchronous forms, which also need a
// completion handler. The handler is checked before the record's contents.
func validateAsync(op string, o *Options, hasHandler bool) error {
	if o == nil {
		return argumentError(op, requiresMessage(op))
	}
	if !hasHandler {
		return argumentError(op, callbackMessage(op))
	}
	return validate(op, o)
}
