package sqlinline

const QListDocFields = `--sql 9668564f-e896-4633-a8f6-54ee518033c7
select doctype, fieldname, coalesce(label, ''), fieldtype, coalesce(options, ''), in_list_view, reqd
from doc_fields
where doctype = $1::text
order by idx asc, fieldname asc;
`

const QSelectFormScript = `--sql af8bc4ef-7f4b-4178-9200-8a0bb0f9e16b
select script
from form_scripts
where dt = $1::text and enabled
order by modified desc
limit 1;
`

const QNextNamingSeries = `--sql e46d4e4b-74d9-4efb-967e-c96f4c1f60b4
insert into naming_series(prefix, current)
values ($1::text, 1)
on conflict (prefix) do update set current = naming_series.current + 1
returning current;
`

const QFieldsLayoutExists = `--sql e1ebd5cd-d8b5-4a65-b9bd-079d0504b329
select exists(
    select 1 from crm_fields_layouts
    where dt = $1::text and type = $2::text
);
`

const QInsertFieldsLayout = `--sql 35f316c7-c153-4831-a5e9-b1994981d845
insert into crm_fields_layouts(name, dt, type, layout)
values (gen_random_uuid(), $1::text, $2::text, $3::jsonb)
on conflict (dt, type) do nothing;
`

const QInsertVersion = `--sql 0cdf15e3-b854-439e-bde1-90916e16cb5e
insert into versions(name, ref_doctype, docname, data, owner, creation)
values (gen_random_uuid(), $1::text, $2::text, $3::jsonb, $4::text, now());
`
