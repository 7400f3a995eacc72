package usecase_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
)

const testAff = `SET UTF-8
LANG en_US
TRY esianrtolcdugmphbyfvkwz
NOSUGGEST !

SFX S Y 2
SFX S y ies [^aeiou]y
SFX S 0 s [^y]
`

const testDic = `8
hello
world
the
apple/S
try/S
quill
darn/!
sentence
`

// writeDictionary stores testAff/testDic as dir/name.aff and dir/name.dic
func writeDictionary(t *testing.T, dir, name string) (aff, dic string) {
	t.Helper()
	aff = filepath.Join(dir, name+".aff")
	dic = filepath.Join(dir, name+".dic")
	gt.NoError(t, os.WriteFile(aff, []byte(testAff), 0600))
	gt.NoError(t, os.WriteFile(dic, []byte(testDic), 0600))
	return aff, dic
}
