// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Laravel Eloquent model-relation extraction, ported from
// framework_linker.py's _link_php_eloquent_relations: a class extending
// Model whose methods return $this->hasOne/hasMany/belongsTo/... declares
// a relation to the named related model.
package frameworklink

import (
	"regexp"
	"strings"
)

var (
	eloquentModelClassPattern = regexp.MustCompile(
		`(?i)class\s+([A-Za-z_][A-Za-z0-9_]*)\s+extends\s+Model\b`)
	eloquentRelationPattern = regexp.MustCompile(
		`(?i)return\s+\$this->(hasOne|hasMany|belongsTo|belongsToMany|morphOne|morphMany|morphTo|morphedByMany|morphToMany)\s*\(\s*\\?([A-Za-z_][A-Za-z0-9_\\]*)::class`)
)

// EloquentRelation is a detected Eloquent model relationship.
type EloquentRelation struct {
	SourceClass  string
	RelationType string
	TargetClass  string
}

// ExtractEloquentRelations scans PHP source for an "extends Model" class
// and its hasOne/hasMany/belongsTo/... relation methods. Only the file's
// first Model subclass is used as the relation source, matching the
// original's single-model-per-file assumption.
func ExtractEloquentRelations(source string) []EloquentRelation {
	classMatch := eloquentModelClassPattern.FindStringSubmatch(source)
	if classMatch == nil {
		return nil
	}
	sourceClass := classMatch[1]

	var relations []EloquentRelation
	for _, m := range eloquentRelationPattern.FindAllStringSubmatch(source, -1) {
		targetParts := strings.Split(m[2], `\`)
		relations = append(relations, EloquentRelation{
			SourceClass:  sourceClass,
			RelationType: m[1],
			TargetClass:  targetParts[len(targetParts)-1],
		})
	}
	return relations
}
