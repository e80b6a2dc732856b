package sqlinline

const QSelectAddressDoc = `--sql 3a417f53-19d7-4cf1-8a96-201ff9cd3007
select to_jsonb(a)
from addresses a
where a.name = $1::text;
`

const QUpdateAddressEmail = `--sql 22f19119-3aad-4c0a-9dfd-387f146342ad
update addresses
set email_id = $2::text, modified = now()
where name = $1::text;
`

const QUpdateAddressPhone = `--sql 22fd3c2b-397e-42e3-9b4c-0244a4dd1d36
update addresses
set phone = $2::text, modified = now()
where name = $1::text;
`

const QUpdateAddressFax = `--sql eddcbd0b-d136-44ba-9369-a29c323dbaaa
update addresses
set fax = $2::text, modified = now()
where name = $1::text;
`

const QUpdateAddressPrimary = `--sql c33c2c42-c142-46e5-9db4-36dcfed717fb
update addresses
set is_primary_address = $2::bool, modified = now()
where name = $1::text;
`

const QUpdateAddressShipping = `--sql 5dcb0a8a-ace0-4518-8066-8da7671f0893
update addresses
set is_shipping_address = $2::bool, modified = now()
where name = $1::text;
`

const QSearchAddresses = `--sql 45403fa4-025d-4ec5-bb01-4b9644950ec9
select coalesce(address_title, ''), coalesce(city, ''), name
from addresses
where coalesce(address_title, '') <> ''
  and not disabled
  and (
    $1::text = ''
    or address_title ilike '%' || $1::text || '%'
    or city ilike '%' || $1::text || '%'
    or name ilike '%' || $1::text || '%'
  )
order by address_title, city, name
limit $2::int;
`
