// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package compiler

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/palantir/conjure-sub003/names"
	"github.com/palantir/conjure-sub003/schema"
	"github.com/palantir/conjure-sub003/syntax"
)

const (
	pathSegmentPattern    = `^[a-zA-Z][a-zA-Z0-9_-]*$`
	pathParamPattern      = `^\{[a-z][a-z0-9]*([A-Z0-9][a-z0-9]+)*}$`
	pathParamRegexPattern = `^\{[a-z][a-z0-9]*([A-Z0-9][a-z0-9]+)*(:\.\+|:\.\*)}$`
	headerIDPattern       = `^[A-Z][a-zA-Z0-9]*(-[A-Z][a-zA-Z0-9]*)*$`
	reservedServiceSuffix = "Retrofit"
)

var (
	pathSegmentRegexp    = regexp.MustCompile(pathSegmentPattern)
	pathParamRegexp      = regexp.MustCompile(pathParamPattern)
	pathParamRegexRegexp = regexp.MustCompile(pathParamRegexPattern)
	headerIDRegexp       = regexp.MustCompile(headerIDPattern)
	pathVarRegexp        = regexp.MustCompile(`\{.+?\}`)

	httpMethods     = []string{"GET", "POST", "PUT", "DELETE"}
	protocolHeaders = []string{"Accept", "Content-Type", "Host"}
)

func validateServices(v *validation) {
	for _, unit := range v.units {
		for _, svc := range unit.File.Services {
			if v.checkService(unit, svc) {
				return
			}
		}
	}
}

func (v *validation) checkService(unit *Unit, svc schema.NamedService) bool {
	path := unit.File.Path
	if strings.HasSuffix(svc.Name.String(), reservedServiceSuffix) {
		if v.fail(errServiceSuffix(path, svc.Name)) {
			return true
		}
	}
	for _, ep := range svc.Def.Endpoints {
		if v.checkEndpoint(unit, &ep) {
			return true
		}
	}

	byMethodPath := make(map[string][]string)
	for _, ep := range svc.Def.Endpoints {
		key := ep.Method + " " + pathVarRegexp.ReplaceAllString(ep.Path, "{arg}")
		byMethodPath[key] = append(byMethodPath[key], ep.Name.String())
	}
	keys := make([]string, 0, len(byMethodPath))
	for key := range byMethodPath {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if eps := byMethodPath[key]; len(eps) > 1 {
			if v.fail(errDuplicateEndpointPath(path, key, eps)) {
				return true
			}
		}
	}
	return false
}

func describeEndpoint(ep *schema.Endpoint) string {
	return fmt.Sprintf("%s{http: %s %s}", ep.Name, ep.Method, ep.Path)
}

func (v *validation) checkEndpoint(unit *Unit, ep *schema.Endpoint) bool {
	path := unit.File.Path
	desc := describeEndpoint(ep)

	if !slices.Contains(httpMethods, ep.Method) {
		if v.fail(errInvalidHTTPMethod(path, ep.Method, ep.Name.String())) {
			return true
		}
	}
	if v.checkHTTPPath(path, ep.Path) {
		return true
	}

	var bodies []string
	var pathArgs []string
	paramIDs := make(map[string]bool)
	for _, arg := range ep.Args {
		if arg.ParamType == schema.ParamBody {
			bodies = append(bodies, arg.Name.String())
			continue
		}
		if arg.ParamType == schema.ParamPath {
			pathArgs = append(pathArgs, arg.Name.String())
		}
		if paramIDs[arg.ParamID] {
			if v.fail(errDuplicateParamID(path, arg.ParamID, desc)) {
				return true
			}
		}
		paramIDs[arg.ParamID] = true
		if v.checkParam(unit, desc, arg) {
			return true
		}
	}
	if len(bodies) > 1 {
		if v.fail(errMultipleBodies(path, desc, bodies)) {
			return true
		}
	}
	if ep.Method == "GET" && len(bodies) > 0 {
		if v.fail(errGetWithBody(path, desc)) {
			return true
		}
	}

	template := syntax.PathParams(ep.Path)
	var extra, missing []string
	for _, arg := range pathArgs {
		if !slices.Contains(template, arg) {
			extra = append(extra, arg)
		}
	}
	for _, param := range template {
		if !slices.Contains(pathArgs, param) {
			missing = append(missing, param)
		}
	}
	if len(extra) > 0 {
		if v.fail(errPathParamNotInTemplate(path, extra, desc)) {
			return true
		}
	}
	if len(missing) > 0 {
		if v.fail(errPathParamMissing(path, missing, desc)) {
			return true
		}
	}

	return v.checkEndpointErrors(unit, ep, desc)
}

func (v *validation) checkHTTPPath(path, httpPath string) bool {
	if !strings.HasPrefix(httpPath, "/") {
		return v.fail(errPathNotAbsolute(path, httpPath))
	}
	if httpPath == "/" {
		return false
	}
	if strings.HasSuffix(httpPath, "/") {
		return v.fail(errPathTrailingSlash(path, httpPath))
	}
	segments := strings.Split(httpPath[1:], "/")
	for ii, segment := range segments {
		switch {
		case pathSegmentRegexp.MatchString(segment), pathParamRegexp.MatchString(segment):
		case pathParamRegexRegexp.MatchString(segment):
			if strings.HasSuffix(segment, ":.*}") && ii != len(segments)-1 {
				if v.fail(errPathParamRegex(path, segment, httpPath)) {
					return true
				}
			}
		default:
			if v.fail(errPathSegment(path, segment, httpPath)) {
				return true
			}
		}
	}
	seen := make(map[string]bool)
	for _, param := range syntax.PathParams(httpPath) {
		if seen[param] {
			if v.fail(errDuplicatePathParam(path, param, httpPath)) {
				return true
			}
		}
		seen[param] = true
	}
	return false
}

func (v *validation) checkParam(unit *Unit, desc string, arg schema.Argument) bool {
	path := unit.File.Path
	if v.containsBinary(unit, arg.Type) {
		if v.fail(errBinaryParam(path, arg.Name, desc)) {
			return true
		}
	}
	switch arg.ParamType {
	case schema.ParamPath, schema.ParamQuery:
		if v.isBearerToken(unit, arg.Type) {
			if v.fail(errBearerTokenParam(path, arg.Name, desc)) {
				return true
			}
		}
	}
	switch arg.ParamType {
	case schema.ParamHeader:
		if !headerIDRegexp.MatchString(arg.ParamID) {
			return v.fail(errHeaderID(path, arg.ParamID, desc))
		}
		if slices.Contains(protocolHeaders, arg.ParamID) {
			return v.fail(errProtocolHeader(path, arg.ParamID, desc))
		}
	case schema.ParamQuery:
		if _, err := names.NewFieldName(arg.ParamID); err != nil {
			return v.fail(errQueryParamID(path, arg.ParamID, desc))
		}
	case schema.ParamPath:
	default:
		panic("unreachable")
	}
	return false
}

// containsBinary reports whether t, with aliases expanded, mentions binary.
func (v *validation) containsBinary(unit *Unit, t schema.Type) bool {
	var found bool
	seen := make(map[schema.Definition]bool)
	var walk func(unit *Unit, t schema.Type)
	walk = func(unit *Unit, t schema.Type) {
		schema.Walk(t, func(t schema.Type) bool {
			switch t.(type) {
			case schema.Binary:
				found = true
			case schema.LocalReference, schema.ForeignReference:
				_, def, owner, ok := v.lookup(unit, t)
				if alias, isAlias := def.(*schema.AliasDefinition); ok && isAlias && !seen[def] {
					seen[def] = true
					walk(owner, alias.Aliased)
				}
			}
			return !found
		})
	}
	walk(unit, t)
	return found
}

func (v *validation) isBearerToken(unit *Unit, t schema.Type) bool {
	t, _ = v.dealias(unit, t)
	if opt, ok := t.(schema.Optional); ok {
		t = opt.Item
	}
	p, ok := t.(schema.Primitive)
	return ok && p == schema.BearerToken
}

func (v *validation) checkEndpointErrors(unit *Unit, ep *schema.Endpoint, desc string) bool {
	path := unit.File.Path
	seen := make(map[string]bool)
	for _, epErr := range ep.Errors {
		name, def, _, ok := v.lookup(unit, epErr.Error)
		if !ok {
			switch epErr.Error.(type) {
			case schema.LocalReference, schema.ForeignReference:
				// Reported by the references validator.
				continue
			}
		}
		errDef, isError := def.(*schema.ErrorDefinition)
		if !ok || !isError {
			if v.fail(errNotAnErrorType(path, epErr.Error.String(), desc)) {
				return true
			}
			continue
		}
		key := errDef.Namespace.String() + "." + name.String()
		if seen[key] {
			if v.fail(errDuplicateEndpointError(path, name.String(), errDef.Namespace.String(), desc)) {
				return true
			}
			continue
		}
		seen[key] = true
	}
	return false
}
