package constants

// Ключи хранилища устройства. Форматы значений совпадают с тем,
// что браузер держал в localStorage.
const (
	StorageKeyCurrentUser = "rpg-user"     // текущая личность (JSON-объект)
	StorageKeyUsers       = "rpg-users"    // все известные личности (JSON-массив)
	StorageKeyGames       = "rpgGames"     // сохраненные игры (JSON-массив Game)
	StorageKeyLanguage    = "rpg-language" // код языка интерфейса

	StorageKeyChat   = "rpg-chat"   // история разговора с генератором текста
	StorageKeyStudio = "rpg-studio" // проект, открытый в редакторе

	// StorageKeyPlayPrefix + ID игры - сохраненная сессия проигрывания.
	StorageKeyPlayPrefix = "rpg-play:"
)

// PlayKey возвращает ключ сохраненной сессии проигрывания игры.
func PlayKey(gameID string) string {
	return StorageKeyPlayPrefix + gameID
}
